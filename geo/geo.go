// Package geo provides great-circle distance, mileage-band zone lookup,
// transit time, and around-the-world factor calculations.
package geo

import (
	"fmt"
	"math"

	"github.com/cwr213/sla-path-model/model"
)

// EarthRadiusMiles is the sphere radius used for the haversine formula.
const EarthRadiusMiles = 3958.756

// BadSpeedError is returned by TransitMinutes when mph <= 0.
type BadSpeedError struct {
	MPH float64
}

func (e *BadSpeedError) Error() string {
	return fmt.Sprintf("geo: bad speed %.2f mph, must be > 0", e.MPH)
}

// GreatCircleMiles returns the haversine great-circle distance in miles
// between two lat/lon points given in degrees.
func GreatCircleMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// ZoneForDistance returns the band whose [MilesMin, MilesMax) interval
// contains d. If d is at or beyond the last band's max, the last band is
// returned. bands must be sorted ascending by Zone/MilesMin. Returns the
// zero MileageBand and false if bands is empty.
func ZoneForDistance(d float64, bands []model.MileageBand) (model.MileageBand, bool) {
	if len(bands) == 0 {
		return model.MileageBand{}, false
	}
	for i, b := range bands {
		isLast := i == len(bands)-1
		if isLast {
			if d >= b.MilesMin {
				return b, true
			}
			continue
		}
		if d >= b.MilesMin && d < b.MilesMax {
			return b, true
		}
	}
	// d fell below every band's min (shouldn't happen for sorted,
	// contiguous bands starting at 0) or above the last band's check
	// above already handled the common "above max" case. Fall back to
	// the last band, matching geo.py's above-max fallback.
	return bands[len(bands)-1], true
}

// TransitMinutes computes linehaul minutes for a leg of the given
// distance, circuity factor, and speed.
func TransitMinutes(distanceMiles, circuityFactor, mph float64) (float64, error) {
	if mph <= 0 {
		return 0, &BadSpeedError{MPH: mph}
	}
	return distanceMiles * circuityFactor / mph * 60.0, nil
}

// CalculateATWFactor is total path miles divided by direct miles, defined
// as 1.0 when direct miles is non-positive (the O=D / zero-distance case).
func CalculateATWFactor(totalMiles, directMiles float64) float64 {
	if directMiles <= 0 {
		return 1.0
	}
	return totalMiles / directMiles
}

// PathLegs returns the great-circle distance of each edge in nodes (in
// order) plus their sum. facilities must contain every node.
func PathLegs(nodes []string, facilities map[string]model.Facility) ([]float64, float64, error) {
	if len(nodes) < 2 {
		return nil, 0, nil
	}
	legs := make([]float64, 0, len(nodes)-1)
	var total float64
	for i := 0; i < len(nodes)-1; i++ {
		a, ok := facilities[nodes[i]]
		if !ok {
			return nil, 0, fmt.Errorf("geo: unknown facility %q in path", nodes[i])
		}
		b, ok := facilities[nodes[i+1]]
		if !ok {
			return nil, 0, fmt.Errorf("geo: unknown facility %q in path", nodes[i+1])
		}
		d := GreatCircleMiles(a.Lat, a.Lon, b.Lat, b.Lon)
		legs = append(legs, d)
		total += d
	}
	return legs, total, nil
}
