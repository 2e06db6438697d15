package astro

import (
	"math"
	"time"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const j2000 = 2451545.0

// degreesPerHour of rotation: the Earth turns 15 degrees per sidereal hour.
const degreesPerHour = 15.0

// JulianDate converts a time.Time (UTC) to Julian Date, including the
// fractional day for the time-of-day. Uses the standard Gregorian-calendar
// algorithm valid for dates after March 1, 4801 BC.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	jd := julianDay0(t)
	jd += (float64(t.Hour()) + float64(t.Minute())/60.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600.0) / 24.0
	return jd
}

// julianDay0 returns the Julian Day number at 0h UTC of t's calendar date.
func julianDay0(t time.Time) float64 {
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	// Treat Jan/Feb as months 13/14 of the previous year.
	if m <= 2 {
		y -= 1
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
}

// GMSTHours calculates Greenwich Mean Sidereal Time in hours for a given
// UTC time, always in [0, 24).
//
// The Julian centuries T are taken from 0h UTC of the date and the
// time-of-day enters separately as UT hours:
//
//	GMST = 6.697374558 + 1.00273790935·UT
//	     + (8640184.812866·T + 0.093104·T² − 0.0000062·T³)/3600
//
// Pure function of the input time; no I/O, no shared state.
func GMSTHours(t time.Time) float64 {
	t = t.UTC()

	jd0 := julianDay0(t)
	tc := (jd0 - j2000) / 36525.0
	ut := float64(t.Hour()) + float64(t.Minute())/60.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600.0

	gmst := 6.697374558 +
		1.00273790935*ut +
		(8640184.812866*tc+0.093104*tc*tc-0.0000062*tc*tc*tc)/3600.0

	return normalizeHours(gmst)
}

// normalizeHours reduces h modulo 24 into [0, 24).
func normalizeHours(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	return h
}
