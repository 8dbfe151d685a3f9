package cpt

import (
	"testing"
	"time"

	"github.com/cwr213/sla-path-model/model"
	"github.com/stretchr/testify/require"
)

func mustZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	return loc
}

func TestGenerateFacilityCPTsSingle(t *testing.T) {
	zone := mustZone(t)
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(22 * 60), Zone: zone}
	cpts := generateFacilityCPTs("A", w, 1)
	require.Len(t, cpts, 1)
	require.Equal(t, w.EndLocal, cpts[0].LocalTime)
}

func TestGenerateFacilityCPTsMultiple(t *testing.T) {
	zone := mustZone(t)
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(22 * 60), Zone: zone}
	cpts := generateFacilityCPTs("A", w, 3)
	require.Len(t, cpts, 3)
	require.Equal(t, model.Clock(18*60), cpts[0].LocalTime)
	require.Equal(t, model.Clock(20*60), cpts[1].LocalTime)
	require.Equal(t, model.Clock(22*60), cpts[2].LocalTime)
}

func TestExplicitOverridesGenerated(t *testing.T) {
	zone := mustZone(t)
	n := 1
	facilities := map[string]model.Facility{
		"A": {
			Name: "A", Type: model.Hub,
			OutboundWindow:   &model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(22 * 60), Zone: zone},
			OutboundCPTCount: &n,
		},
	}
	explicit := []model.CPT{
		{Origin: "A", Dest: "C", LocalTime: model.Clock(23 * 60), Zone: zone, IsActive: true},
	}
	table := Build(facilities, explicit)

	cpts := table.CPTsForArc("A", "C")
	require.Len(t, cpts, 1)
	require.Equal(t, model.Clock(23*60), cpts[0].LocalTime)

	// no explicit override for A->D: falls back to generated, rebound.
	cpts2 := table.CPTsForArc("A", "D")
	require.Len(t, cpts2, 1)
	require.Equal(t, "D", cpts2[0].Dest)
	require.Equal(t, model.Clock(22*60), cpts2[0].LocalTime)
}

func TestNextCPTAtOrAfterNoSchedule(t *testing.T) {
	table := Build(map[string]model.Facility{}, nil)
	ready := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	got, dwell, active := table.NextCPTAtOrAfter("X", "Y", ready)
	require.True(t, got.Equal(ready))
	require.Equal(t, 0.0, dwell)
	require.False(t, active)
}

func TestNextCPTAtOrAfterDailyMask(t *testing.T) {
	zone := mustZone(t)
	explicit := []model.CPT{
		{Origin: "A", Dest: "C", LocalTime: model.Clock(22 * 60), Zone: zone, IsActive: true},
	}
	table := Build(map[string]model.Facility{}, explicit)

	ready := time.Date(2025, 6, 15, 19, 0, 0, 0, zone)
	got, dwell, active := table.NextCPTAtOrAfter("A", "C", ready)
	want := time.Date(2025, 6, 15, 22, 0, 0, 0, zone)
	require.True(t, got.Equal(want))
	require.Equal(t, 180.0, dwell)
	require.True(t, active)
}
