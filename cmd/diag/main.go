// Diagnostic CLI: prints the sidereal time, zenith coordinates, and the
// star-chart request body for an observer, for eyeballing against external
// references.
//
// Usage: diag <lat> <lon> [RFC3339 time] [zoom]
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/leecookson/cookson-pro-api/internal/astro"
	"github.com/leecookson/cookson-pro-api/internal/catalog"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: diag <lat> <lon> [RFC3339 time] [zoom]")
		os.Exit(2)
	}

	lat, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR parsing latitude:", err)
		os.Exit(1)
	}
	lon, err := strconv.ParseFloat(os.Args[2], 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR parsing longitude:", err)
		os.Exit(1)
	}

	moment := time.Now().UTC()
	if len(os.Args) > 3 {
		moment, err = time.Parse(time.RFC3339, os.Args[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR parsing time:", err)
			os.Exit(1)
		}
		moment = moment.UTC()
	}

	zoom := ""
	if len(os.Args) > 4 {
		zoom = os.Args[4]
	}

	obs := astro.Observer{LatDeg: lat, LonDeg: lon}

	fmt.Printf("Moment (UTC):   %v\n", moment.Format(time.RFC3339Nano))
	fmt.Printf("Julian Date:    %.6f\n", astro.JulianDate(moment))
	fmt.Printf("GMST:           %.6f h\n", astro.GMSTHours(moment))

	zenith, err := astro.Zenith(obs, moment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR resolving zenith:", err)
		os.Exit(1)
	}
	fmt.Printf("Zenith RA:      %.6f h\n", zenith.RightAscensionHours)
	fmt.Printf("Zenith Dec:     %.6f deg\n", zenith.DeclinationDeg)

	req, err := catalog.BuildStarChartRequest(obs, moment, zoom)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR building star chart request:", err)
		os.Exit(1)
	}
	body, _ := json.MarshalIndent(req, "", "  ")
	fmt.Printf("Star chart request body:\n%s\n", body)
}
