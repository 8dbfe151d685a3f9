package pathenum

import (
	"testing"

	"github.com/cwr213/sla-path-model/model"
	"github.com/stretchr/testify/require"
)

func testFacilities() map[string]model.Facility {
	return map[string]model.Facility{
		"A": {Name: "A", Type: model.Hub, Lat: 40, Lon: -75},
		"B": {Name: "B", Type: model.Hub, Lat: 40, Lon: -80, RegionalSortHub: ""},
		"C": {Name: "C", Type: model.Launch, Lat: 40, Lon: -120, ParentHubName: "B", RegionalSortHub: "B"},
	}
}

func testSettings() model.RunSettings {
	return model.RunSettings{MaxPathTouches: 4, MaxPathATWFactor: 1.5}
}

func TestODEqualPath(t *testing.T) {
	facilities := testFacilities()
	facilities["B"] = model.Facility{Name: "B", Type: model.Hybrid, Lat: 40, Lon: -80}
	e := New(facilities, testSettings())

	candidates, err := e.EnumeratePathsForOD("B", "B")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, model.SortSortGroup, candidates[0].SortLevel)
	require.Equal(t, 1.0, candidates[0].ATWFactor)
}

func TestDirectAndOneTouchVariants(t *testing.T) {
	e := New(testFacilities(), testSettings())

	candidates, err := e.EnumeratePathsForOD("A", "C")
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	var sawDirect, sawOneTouchRegion bool
	for _, c := range candidates {
		if c.IsDirect() {
			sawDirect = true
		}
		if len(c.PathNodes) == 3 && c.SortLevel == model.SortRegion {
			sawOneTouchRegion = true
		}
		for _, n := range c.PathNodes[1 : len(c.PathNodes)-1] {
			fac := testFacilities()[n]
			require.True(t, fac.IsSortingFacility())
		}
	}
	require.True(t, sawDirect)
	require.True(t, sawOneTouchRegion, "expected a REGION variant via B, C's regional_sort_hub")
}

func TestHubHierarchyRuleRequiresParentHub(t *testing.T) {
	facilities := testFacilities()
	facilities["D"] = model.Facility{Name: "D", Type: model.Hub, Lat: 41, Lon: -76}
	e := New(facilities, testSettings())

	candidates, err := e.EnumeratePathsForOD("D", "C")
	require.NoError(t, err)
	for _, c := range candidates {
		if c.IsDirect() {
			continue
		}
		require.Contains(t, c.PathNodes, "B", "non-direct path to C must pass through its parent_hub B")
	}
}

func TestATWFilterDropsNonDirect(t *testing.T) {
	settings := testSettings()
	settings.MaxPathATWFactor = 1.0
	e := New(testFacilities(), settings)

	candidates, err := e.EnumeratePathsForOD("A", "C")
	require.NoError(t, err)
	for _, c := range candidates {
		require.True(t, c.IsDirect(), "non-direct variants should be ATW-filtered out at max_atw=1.0")
	}
}

func TestUnknownFacilityErrors(t *testing.T) {
	e := New(testFacilities(), testSettings())
	_, err := e.EnumeratePathsForOD("Z", "C")
	require.Error(t, err)
}
