package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwr213/sla-path-model/cpt"
	"github.com/cwr213/sla-path-model/model"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

// twoHubScenario builds the facility/band/CPT fixtures for a two-node
// direct path A (New York) -> C (Los Angeles) at ~2446 miles of
// great-circle distance.
func twoHubScenario(t *testing.T) (map[string]model.Facility, []model.MileageBand, *cpt.Table, model.TimingParams, model.RunSettings) {
	t.Helper()
	eastern := mustZone(t, "America/New_York")
	pacific := mustZone(t, "America/Los_Angeles")

	facilities := map[string]model.Facility{
		"A": {
			Name: "A", Type: model.Hub, Lat: 40.7128, Lon: -74.0060, Zone: eastern,
			MMSortWindow:     &model.SortWindow{StartLocal: 0, EndLocal: 1439, Zone: eastern},
			OutboundWindow:   &model.SortWindow{StartLocal: 22 * 60, EndLocal: 23*60 + 30, Zone: eastern},
			OutboundCPTCount: intPtr(1),
		},
		"C": {
			Name: "C", Type: model.Launch, Lat: 34.0522, Lon: -118.2437, Zone: pacific,
			LMSortWindow: &model.SortWindow{StartLocal: 0, EndLocal: 1439, Zone: pacific},
		},
	}

	bands := []model.MileageBand{
		{Zone: 1, MilesMin: 0, MilesMax: 500, CircuityFactor: 1.15, MPH: 55},
		{Zone: 2, MilesMin: 500, MilesMax: 1500, CircuityFactor: 1.15, MPH: 55},
		{Zone: 3, MilesMin: 1500, MilesMax: 3000, CircuityFactor: 1.15, MPH: 55},
	}

	table := cpt.Build(facilities, nil)

	params := model.TimingParams{
		InductionSortMinutes:       30,
		MiddleMileCrossdockMinutes: 45,
		MiddleMileSortMinutes:      60,
		LastMileSortMinutes:        30,
	}

	settings := model.RunSettings{
		ReferenceInjectionDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ReferenceInjectionTime: mustClock(t, "10:00"),
	}

	return facilities, bands, table, params, settings
}

func intPtr(v int) *int { return &v }

func mustClock(t *testing.T, s string) model.Clock {
	t.Helper()
	c, err := model.ParseClock(s)
	require.NoError(t, err)
	return c
}

func TestCalculatePathTimingDirectPath(t *testing.T) {
	facilities, bands, table, params, settings := twoHubScenario(t)
	engine := NewEngine(facilities, bands, table, params, settings)

	candidate := model.PathCandidate{
		Origin: "A", Dest: "C",
		PathNodes:     []string{"A", "C"},
		PathType:      model.PathDirect,
		SortLevel:     model.SortMarket,
		DestSortLevel: model.SortMarket,
	}

	result, err := engine.CalculatePathTiming(context.Background(), candidate)
	require.NoError(t, err)

	require.Len(t, result.Steps, 3) // induction, transit, last-mile sort
	require.Equal(t, model.InductionSort, result.Steps[0].Kind())
	require.Equal(t, model.Transit, result.Steps[1].Kind())
	require.Equal(t, model.LastMileSort, result.Steps[2].Kind())

	transit := result.Steps[1].(model.TransitStep)
	require.InDelta(t, 2446, transit.DistanceMiles, 5)
	require.True(t, result.UsesOnlyActiveArcs)
	require.True(t, result.DeliveryUTC.After(result.RequiredInjectionUTC))
	require.Greater(t, result.TITHours, 0.0)
}

func TestCalculatePathTimingODEqual(t *testing.T) {
	facilities, bands, table, params, settings := twoHubScenario(t)
	engine := NewEngine(facilities, bands, table, params, settings)

	candidate := model.PathCandidate{
		Origin: "A", Dest: "A",
		PathNodes:     []string{"A", "A"},
		PathType:      model.PathDirect,
		SortLevel:     model.SortSortGroup,
		DestSortLevel: model.SortSortGroup,
	}

	result, err := engine.CalculatePathTiming(context.Background(), candidate)
	require.NoError(t, err)

	require.Len(t, result.Steps, 1, "O=D path should only run induction")
	require.InDelta(t, params.InductionSortMinutes, result.TITHours*60, 0.01)
}

func TestCalculatePathTimingMissingCPTMarksInactive(t *testing.T) {
	facilities, bands, _, params, settings := twoHubScenario(t)
	// No outbound window/count on a fresh origin -> no generated schedule,
	// and no explicit override, so the arc has zero CPTs.
	facilities["B"] = model.Facility{Name: "B", Type: model.Hub, Lat: 39.9526, Lon: -75.1652, Zone: facilities["A"].Zone}
	emptyTable := cpt.Build(facilities, nil)
	engine := NewEngine(facilities, []model.MileageBand{{Zone: 1, MilesMin: 0, MilesMax: 5000, CircuityFactor: 1.1, MPH: 50}}, emptyTable, params, settings)

	candidate := model.PathCandidate{
		Origin: "B", Dest: "C",
		PathNodes:     []string{"B", "C"},
		PathType:      model.PathDirect,
		SortLevel:     model.SortMarket,
		DestSortLevel: model.SortMarket,
	}

	result, err := engine.CalculatePathTiming(context.Background(), candidate)
	require.NoError(t, err)
	require.False(t, result.UsesOnlyActiveArcs)
	require.Len(t, result.Anomalies, 1)
	require.Contains(t, result.Anomalies[0].Error(), "no active CPT found")
}

func TestCalculatePathTimingClampedWindowRecordsAnomaly(t *testing.T) {
	facilities, bands, table, params, settings := twoHubScenario(t)
	// Shrink A's induction sort window to far less than the 30-minute
	// induction sort, forcing the backward-chain aligner to clamp.
	eastern := facilities["A"].Zone
	narrow := facilities["A"]
	narrow.MMSortWindow = &model.SortWindow{StartLocal: 10 * 60, EndLocal: 10*60 + 5, Zone: eastern}
	facilities["A"] = narrow

	engine := NewEngine(facilities, bands, table, params, settings)
	candidate := model.PathCandidate{
		Origin: "A", Dest: "C",
		PathNodes:     []string{"A", "C"},
		PathType:      model.PathDirect,
		SortLevel:     model.SortMarket,
		DestSortLevel: model.SortMarket,
	}

	result, err := engine.CalculatePathTiming(context.Background(), candidate)
	require.NoError(t, err)
	require.NotEmpty(t, result.Anomalies)
	require.Contains(t, result.Anomalies[0].Error(), "backward-chain dwell was clamped")
}

func TestCalculatePathTimingUnknownFacility(t *testing.T) {
	facilities, bands, table, params, settings := twoHubScenario(t)
	engine := NewEngine(facilities, bands, table, params, settings)

	candidate := model.PathCandidate{
		Origin: "Z", Dest: "C",
		PathNodes: []string{"Z", "C"},
	}

	_, err := engine.CalculatePathTiming(context.Background(), candidate)
	require.Error(t, err)
}
