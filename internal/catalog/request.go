// Package catalog builds and executes requests against the external
// celestial-catalog service (api.astronomyapi.com).
package catalog

import (
	"encoding/base64"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/leecookson/cookson-pro-api/internal/astro"
)

// Credentials are the opaque application id/secret pair for the catalog
// service, resolved by the secrets collaborator.
type Credentials struct {
	AppID     string
	AppSecret string
}

// BasicAuth returns the value for the Authorization header:
// "Basic " + base64(id:secret).
func (c Credentials) BasicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.AppID+":"+c.AppSecret))
}

// defaultZoom is used when the star-chart zoom input is absent or not an
// integer. No upper or lower bound is enforced beyond parseability.
const defaultZoom = 3

// fallbackDec is the declination used if a resolved zenith somehow lacks
// one. Unreachable through astro.Zenith, which always sets declination to
// the observer latitude.
const fallbackDec = 89.9

// BuildSearchRequest serializes a validated query into the search URL and
// request headers. Every present field appears exactly once in the query
// string; absent optional fields do not appear at all. Pure transformation;
// no network I/O.
func BuildSearchRequest(baseURL string, q astro.SearchQuery, creds Credentials) (string, http.Header) {
	values := url.Values{}

	switch s := q.(type) {
	case astro.TermSearch:
		values.Set("term", s.Term)
		if s.MatchType != "" {
			values.Set("match_type", string(s.MatchType))
		}
		if s.OrderBy != "" {
			values.Set("order_by", s.OrderBy)
		}
		setOptions(values, s.Options)
	case astro.AreaSearch:
		values.Set("ra", strconv.FormatFloat(s.RA, 'f', -1, 64))
		values.Set("dec", strconv.FormatFloat(s.Dec, 'f', -1, 64))
		setOptions(values, s.Options)
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Authorization", creds.BasicAuth())

	return baseURL + "/search?" + values.Encode(), headers
}

func setOptions(values url.Values, opts astro.Options) {
	if opts.Limit != nil {
		values.Set("limit", strconv.Itoa(*opts.Limit))
	}
	if opts.Offset != nil {
		values.Set("offset", strconv.Itoa(*opts.Offset))
	}
}

// StarChartRequest is the JSON body for the star-chart rendering endpoint.
type StarChartRequest struct {
	Style    string        `json:"style"`
	Observer ChartObserver `json:"observer"`
	View     ChartView     `json:"view"`
}

// ChartObserver carries the observer position and the date-only component
// of the requested moment (time-of-day is discarded).
type ChartObserver struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      string  `json:"date"` // YYYY-MM-DD
}

type ChartView struct {
	Type       string          `json:"type"`
	Parameters ChartParameters `json:"parameters"`
}

type ChartParameters struct {
	Position ChartPosition `json:"position"`
	Zoom     int           `json:"zoom"`
}

type ChartPosition struct {
	Equatorial ChartEquatorial `json:"equatorial"`
}

type ChartEquatorial struct {
	RightAscension float64 `json:"rightAscension"`
	Declination    float64 `json:"declination"`
}

// BuildStarChartRequest resolves the observer's zenith at time t and
// assembles the chart-rendering body centered on it. Zoom parses from
// zoomInput, defaulting to 3 when absent or unparseable. A validation
// failure from the zenith resolution propagates unchanged.
func BuildStarChartRequest(obs astro.Observer, t time.Time, zoomInput string) (StarChartRequest, error) {
	zenith, err := astro.Zenith(obs, t)
	if err != nil {
		return StarChartRequest{}, err
	}

	zoom := defaultZoom
	if zoomInput != "" {
		if n, perr := strconv.Atoi(zoomInput); perr == nil {
			zoom = n
		}
	}

	dec := zenith.DeclinationDeg
	if math.IsNaN(dec) {
		dec = fallbackDec
	}

	return StarChartRequest{
		Style: "default",
		Observer: ChartObserver{
			Latitude:  obs.LatDeg,
			Longitude: obs.LonDeg,
			Date:      t.UTC().Format("2006-01-02"),
		},
		View: ChartView{
			Type: "area",
			Parameters: ChartParameters{
				Position: ChartPosition{
					Equatorial: ChartEquatorial{
						RightAscension: zenith.RightAscensionHours,
						Declination:    dec,
					},
				},
				Zoom: zoom,
			},
		},
	}, nil
}
