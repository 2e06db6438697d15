package astro

import (
	"time"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
)

// Observer is a ground observer's geodetic position in degrees.
type Observer struct {
	LatDeg float64
	LonDeg float64
}

// EquatorialCoordinate is a position on the celestial sphere.
// Right ascension is in hours [0, 24), declination in degrees [-90, 90].
type EquatorialCoordinate struct {
	RightAscensionHours float64
	DeclinationDeg      float64
}

// Validate rejects observers outside the valid latitude/longitude ranges.
// The boundary values ±90 and ±180 are accepted.
func (o Observer) Validate() error {
	if o.LatDeg < -90 || o.LatDeg > 90 {
		return apperr.NewValidation("Invalid latitude. Must be between -90 and 90.")
	}
	if o.LonDeg < -180 || o.LonDeg > 180 {
		return apperr.NewValidation("Invalid longitude. Must be between -180 and 180.")
	}
	return nil
}

// Zenith returns the equatorial coordinates of the point directly overhead
// the observer at time t.
//
// The zenith's declination equals the observer's latitude exactly. Its
// right ascension equals the Local Sidereal Time: GMST plus one hour per
// 15 degrees of longitude, normalized into [0, 24). For a fixed t the
// right ascension increases continuously with longitude, wrapping at the
// ±180° boundary.
func Zenith(o Observer, t time.Time) (EquatorialCoordinate, error) {
	if err := o.Validate(); err != nil {
		return EquatorialCoordinate{}, err
	}

	lst := normalizeHours(GMSTHours(t) + o.LonDeg/degreesPerHour)

	return EquatorialCoordinate{
		RightAscensionHours: lst,
		DeclinationDeg:      o.LatDeg,
	}, nil
}
