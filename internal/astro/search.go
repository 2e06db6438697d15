package astro

import (
	"net/url"
	"strconv"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
)

// MatchType narrows a term search to fuzzy or exact matching.
type MatchType string

const (
	MatchFuzzy MatchType = "fuzzy"
	MatchExact MatchType = "exact"
)

// SearchQuery is the validated form of a celestial-object search. It is a
// sealed union: the only implementations are TermSearch and AreaSearch,
// and the only constructor is ParseSearchQuery, so downstream code never
// observes an ambiguous or partially valid shape.
type SearchQuery interface {
	searchQuery()
}

// Options are modifiers shared by both search variants. Nil pointers mean
// the caller did not supply the field; it must then be omitted from the
// outbound request, not defaulted.
type Options struct {
	Limit  *int
	Offset *int
}

// TermSearch looks up objects by free-text name.
type TermSearch struct {
	Term      string
	MatchType MatchType // empty when not supplied
	OrderBy   string    // "name" or empty; only meaningful for term search
	Options
}

// AreaSearch looks up objects around an equatorial position.
type AreaSearch struct {
	RA  float64 // right ascension, hours
	Dec float64 // declination, degrees
	Options
}

func (TermSearch) searchQuery() {}
func (AreaSearch) searchQuery() {}

// ParseSearchQuery validates raw query parameters and returns the typed
// search. It never coerces silently: every malformed field is rejected
// with a validation error.
//
// The checks run in one fixed order so error messages are deterministic:
//
//  1. presence and exclusivity — either "term" or both "ra" and "dec"
//     must be present, and "term" may not be combined with "ra"/"dec";
//  2. per-field syntax — match_type, ra, dec, limit, offset, order_by;
//  3. cross-field constraints — "order_by" is rejected for an area
//     search, where ordering is undefined.
func ParseSearchQuery(values url.Values) (SearchQuery, error) {
	term := values.Get("term")
	raStr := values.Get("ra")
	decStr := values.Get("dec")

	// 1. Presence and exclusivity.
	if term == "" && (raStr == "" || decStr == "") {
		return nil, apperr.NewValidation(`Invalid parameters: Either "term" or both "ra" and "dec" must be provided.`)
	}
	if term != "" && (raStr != "" || decStr != "") {
		return nil, apperr.NewValidation(`Invalid parameters: "term" cannot be combined with "ra"/"dec".`)
	}

	// 2. Per-field syntax.
	matchType := values.Get("match_type")
	if matchType != "" && matchType != string(MatchFuzzy) && matchType != string(MatchExact) {
		return nil, apperr.NewValidation(`Invalid parameter: "match_type" must be "fuzzy" or "exact".`)
	}

	var ra, dec float64
	if raStr != "" {
		v, err := strconv.ParseFloat(raStr, 64)
		if err != nil {
			return nil, apperr.NewValidation(`Invalid parameter: "ra" must be a decimal value.`)
		}
		ra = v
	}
	if decStr != "" {
		v, err := strconv.ParseFloat(decStr, 64)
		if err != nil {
			return nil, apperr.NewValidation(`Invalid parameter: "dec" must be a decimal value.`)
		}
		dec = v
	}

	var opts Options
	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, apperr.NewValidation(`Invalid parameter: "limit" must be a positive integer.`)
		}
		opts.Limit = &n
	}
	if s := values.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, apperr.NewValidation(`Invalid parameter: "offset" must be a non-negative integer.`)
		}
		opts.Offset = &n
	}

	orderBy := values.Get("order_by")
	if orderBy != "" && orderBy != "name" {
		return nil, apperr.NewValidation(`Invalid parameter: "order_by" must be "name".`)
	}

	// 3. Cross-field constraints.
	if orderBy != "" && term == "" {
		return nil, apperr.NewValidation(`Invalid parameter: "order_by" is not supported during an area search (RA/DEC).`)
	}

	if term != "" {
		return TermSearch{
			Term:      term,
			MatchType: MatchType(matchType),
			OrderBy:   orderBy,
			Options:   opts,
		}, nil
	}
	return AreaSearch{RA: ra, Dec: dec, Options: opts}, nil
}
