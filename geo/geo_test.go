package geo

import (
	"math"
	"testing"

	"github.com/cwr213/sla-path-model/model"
)

func TestGreatCircleMiles(t *testing.T) {
	// Roughly 45 degrees of longitude at 40N is about 2357 miles.
	d := GreatCircleMiles(40, -75, 40, -120)
	if math.Abs(d-2357) > 15 {
		t.Fatalf("got %.1f mi, want ~2357", d)
	}
}

func TestZoneForDistanceBoundaries(t *testing.T) {
	bands := []model.MileageBand{
		{Zone: 1, MilesMin: 0, MilesMax: 100, CircuityFactor: 1.1, MPH: 50},
		{Zone: 2, MilesMin: 100, MilesMax: 500, CircuityFactor: 1.2, MPH: 55},
		{Zone: 3, MilesMin: 500, MilesMax: 1000, CircuityFactor: 1.3, MPH: 60},
	}

	cases := []struct {
		d    float64
		zone int
	}{
		{0, 1},
		{99.99, 1},
		{100, 2},    // lower bound inclusive
		{500, 3},    // intermediate upper bound -> next band
		{999.99, 3},
		{1000, 3},   // last band upper bound inclusive
		{5000, 3},   // above max falls into last band
	}
	for _, c := range cases {
		b, ok := ZoneForDistance(c.d, bands)
		if !ok {
			t.Fatalf("d=%.2f: no band found", c.d)
		}
		if b.Zone != c.zone {
			t.Errorf("d=%.2f: got zone %d, want %d", c.d, b.Zone, c.zone)
		}
	}
}

func TestZoneForDistanceEmpty(t *testing.T) {
	if _, ok := ZoneForDistance(10, nil); ok {
		t.Fatalf("expected no band for empty band list")
	}
}

func TestTransitMinutesBadSpeed(t *testing.T) {
	if _, err := TransitMinutes(100, 1.2, 0); err == nil {
		t.Fatalf("expected BadSpeedError for mph=0")
	}
	if _, err := TransitMinutes(100, 1.2, -5); err == nil {
		t.Fatalf("expected BadSpeedError for negative mph")
	}
}

func TestTransitMinutes(t *testing.T) {
	got, err := TransitMinutes(100, 1.2, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100.0 * 1.2 / 50.0 * 60.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %.4f, want %.4f", got, want)
	}
}

func TestCalculateATWFactor(t *testing.T) {
	if got := CalculateATWFactor(0, 0); got != 1.0 {
		t.Errorf("zero/zero: got %.2f, want 1.0", got)
	}
	if got := CalculateATWFactor(150, 100); got != 1.5 {
		t.Errorf("got %.2f, want 1.5", got)
	}
}

func TestPathLegsUnknownFacility(t *testing.T) {
	_, _, err := PathLegs([]string{"A", "B"}, map[string]model.Facility{})
	if err == nil {
		t.Fatalf("expected error for unknown facility")
	}
}
