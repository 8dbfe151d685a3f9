// Command distancecheck sanity-checks a facility network's mileage bands
// against actual great-circle geography: for every ordered pair of
// facilities it prints the computed distance and the zone it falls into,
// flagging any pair that falls outside every configured band.
package main

import (
	"fmt"
	"os"

	"github.com/cwr213/sla-path-model/geo"
	"github.com/cwr213/sla-path-model/ingest"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: distancecheck <input-dir>")
		os.Exit(1)
	}

	data, err := ingest.NewLoader(os.Args[1]).LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "distancecheck: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(data.Facilities))
	for name := range data.Facilities {
		names = append(names, name)
	}

	var unbanded int
	for _, u := range names {
		for _, v := range names {
			if u == v {
				continue
			}
			a, b := data.Facilities[u], data.Facilities[v]
			distance := geo.GreatCircleMiles(a.Lat, a.Lon, b.Lat, b.Lon)

			band, found := geo.ZoneForDistance(distance, data.MileageBands)
			// ZoneForDistance falls back to the last band for a distance
			// below the first band or inside a gap; that fallback band's
			// MilesMin is then above the distance.
			if !found || distance < band.MilesMin {
				unbanded++
				fmt.Printf("%s -> %s: %.1f mi, NO MATCHING BAND\n", u, v, distance)
				continue
			}
			fmt.Printf("%s -> %s: %.1f mi, zone %d\n", u, v, distance, band.Zone)
		}
	}

	if unbanded > 0 {
		fmt.Fprintf(os.Stderr, "distancecheck: %d facility pair(s) fall outside every configured mileage band\n", unbanded)
		os.Exit(1)
	}
}
