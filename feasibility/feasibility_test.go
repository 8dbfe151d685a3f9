package feasibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwr213/sla-path-model/model"
)

func TestGetCommitmentPriorityOrder(t *testing.T) {
	zone2 := 2
	commitments := []model.ServiceCommitment{
		{Origin: "*", Dest: "*", SLADays: 5, PriorityWeight: 0.1},      // default
		{Origin: "*", Dest: "*", Zone: &zone2, SLADays: 4, PriorityWeight: 0.2}, // zone-based
		{Origin: "*", Dest: "C", SLADays: 3, PriorityWeight: 0.3},      // dest-specific
		{Origin: "A", Dest: "*", SLADays: 2, PriorityWeight: 0.4},      // origin-specific
		{Origin: "A", Dest: "C", SLADays: 1, PriorityWeight: 0.5},      // specific OD
	}
	checker := NewChecker(commitments)

	sc, ok := checker.GetCommitment("A", "C", 2)
	require.True(t, ok)
	require.Equal(t, 1, sc.SLADays, "specific OD commitment must win over all others")

	sc, ok = checker.GetCommitment("A", "Z", 2)
	require.True(t, ok)
	require.Equal(t, 2, sc.SLADays, "origin-specific wins over zone/default")

	sc, ok = checker.GetCommitment("X", "C", 2)
	require.True(t, ok)
	require.Equal(t, 3, sc.SLADays, "dest-specific wins over zone/default")

	sc, ok = checker.GetCommitment("X", "Y", 2)
	require.True(t, ok)
	require.Equal(t, 4, sc.SLADays, "zone-based wins over default")

	sc, ok = checker.GetCommitment("X", "Y", 9)
	require.True(t, ok)
	require.Equal(t, 5, sc.SLADays, "falls back to default")
}

func TestCheckFeasibilityNoCommitmentIsUnconstrained(t *testing.T) {
	checker := NewChecker(nil)
	timing := &model.PathTimingResult{
		Path:     model.PathCandidate{Origin: "A", Dest: "C"},
		TITHours: 1000,
	}
	checker.CheckFeasibility(timing, 1)
	require.True(t, timing.SLAMet)
	require.False(t, timing.SLAConstrained)
	require.True(t, math.IsInf(timing.SLATargetHours, 1))
}

func TestCheckFeasibilityMetAndMissed(t *testing.T) {
	checker := NewChecker([]model.ServiceCommitment{
		{Origin: "A", Dest: "C", SLADays: 2, SLABufferDays: 0.5, PriorityWeight: 1.0},
	})

	met := &model.PathTimingResult{Path: model.PathCandidate{Origin: "A", Dest: "C"}, TITHours: 50}
	checker.CheckFeasibility(met, 1)
	require.True(t, met.SLAConstrained)
	require.InDelta(t, 60.0, met.SLATargetHours, 0.001)
	require.True(t, met.SLAMet)
	require.InDelta(t, 10.0, met.SLASlackHours, 0.001)

	missed := &model.PathTimingResult{Path: model.PathCandidate{Origin: "A", Dest: "C"}, TITHours: 70}
	checker.CheckFeasibility(missed, 1)
	require.False(t, missed.SLAMet)
	require.InDelta(t, -10.0, missed.SLASlackHours, 0.001)
}

func TestFilterFeasibleDropsEmptyODPairs(t *testing.T) {
	odTimings := map[model.ODKey][]model.PathTimingResult{
		{Origin: "A", Dest: "C"}: {
			{SLAMet: true}, {SLAMet: false},
		},
		{Origin: "A", Dest: "D"}: {
			{SLAMet: false},
		},
	}

	filtered := FilterFeasible(odTimings, false)
	require.Len(t, filtered, 1)
	require.Len(t, filtered[model.ODKey{Origin: "A", Dest: "C"}], 1)

	unfiltered := FilterFeasible(odTimings, true)
	require.Len(t, unfiltered, 2)
}
