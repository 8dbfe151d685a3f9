// Package pathenum implements PathEnumerator: combinatorial physical-path
// generation under hub-hierarchy constraints, sort-level variant
// expansion, and ATW filtering.
package pathenum

import (
	"fmt"
	"log"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/cwr213/sla-path-model/geo"
	"github.com/cwr213/sla-path-model/model"
)

// Enumerator generates PathCandidates for OD pairs over a fixed facility
// network.
type Enumerator struct {
	facilities map[string]model.Facility
	maxTouches int
	maxATW     float64

	sortingFacilities map[string]model.Facility // HUB or HYBRID
	parentHub         map[string]string
	regionalHub       map[string]string

	// network is an unweighted directed graph over every facility, with
	// arcs leaving only hubs/hybrids, used only as a BFS reachability
	// pre-filter (see SPEC_FULL.md §4): an OD pair whose destination is
	// unreachable within maxTouches hops skips
	// the combinatorial generation below entirely. Ranking always uses
	// geo-computed mileage, never a graph edge weight.
	network *core.Graph
}

// New builds an Enumerator over facilities using the touch/ATW limits
// from settings.
func New(facilities map[string]model.Facility, settings model.RunSettings) *Enumerator {
	e := &Enumerator{
		facilities:        facilities,
		maxTouches:        settings.MaxPathTouches,
		maxATW:            settings.MaxPathATWFactor,
		sortingFacilities: make(map[string]model.Facility),
		parentHub:         make(map[string]string),
		regionalHub:       make(map[string]string),
	}

	for name, fac := range facilities {
		if fac.IsSortingFacility() {
			e.sortingFacilities[name] = fac
		}
		if fac.ParentHubName != "" {
			e.parentHub[name] = fac.ParentHubName
		}
		if fac.RegionalSortHub != "" {
			e.regionalHub[name] = fac.RegionalSortHub
		}
	}

	e.network = core.NewGraph(true, false)
	for name := range facilities {
		e.network.AddVertex(&core.Vertex{ID: name, Metadata: map[string]interface{}{}})
	}
	for from := range e.sortingFacilities {
		for to := range facilities {
			if from == to {
				continue
			}
			e.network.AddEdge(from, to, 0)
		}
	}

	log.Printf("pathenum: %d hubs+hybrids, %d launches, %d facilities total",
		len(e.sortingFacilities), countType(facilities, model.Launch), len(facilities))

	return e
}

func countType(facilities map[string]model.Facility, t model.FacilityType) int {
	n := 0
	for _, f := range facilities {
		if f.Type == t {
			n++
		}
	}
	return n
}

// EnumeratePathsForOD produces every valid PathCandidate for (origin,
// dest), already ATW-filtered.
func (e *Enumerator) EnumeratePathsForOD(origin, dest string) ([]model.PathCandidate, error) {
	originFac, ok := e.facilities[origin]
	if !ok {
		return nil, fmt.Errorf("pathenum: unknown origin facility %q", origin)
	}
	destFac, ok := e.facilities[dest]
	if !ok {
		return nil, fmt.Errorf("pathenum: unknown destination facility %q", dest)
	}

	directMiles := geo.GreatCircleMiles(originFac.Lat, originFac.Lon, destFac.Lat, destFac.Lon)

	if origin == dest {
		return e.createODEqualPath(origin, dest), nil
	}

	if !e.reachableWithinTouches(origin, dest) {
		log.Printf("pathenum: od=%s->%s unreachable within %d touches, skipping enumeration", origin, dest, e.maxTouches)
		return nil, nil
	}

	rawPaths := e.enumerateRawPaths(origin, dest)

	var candidates []model.PathCandidate
	for _, nodes := range rawPaths {
		candidates = append(candidates, e.expandPathToCandidates(nodes, origin, dest, directMiles)...)
	}

	valid := make([]model.PathCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ATWFactor <= e.maxATW {
			valid = append(valid, c)
		}
	}

	log.Printf("pathenum: od=%s->%s raw=%d candidates=%d after_atw=%d", origin, dest, len(rawPaths), len(candidates), len(valid))

	return valid, nil
}

// reachableWithinTouches is the BFS pre-filter described in SPEC_FULL.md:
// is dest reachable from origin over the sorting-facility + dest graph
// within maxTouches hops?
func (e *Enumerator) reachableWithinTouches(origin, dest string) bool {
	result, err := bfs.BFS(e.network, origin, bfs.WithMaxDepth(e.maxTouches))
	if err != nil {
		// graph/BFS misconfiguration should never silently hide a
		// candidate path; fail open and let full enumeration decide.
		log.Printf("pathenum: bfs reachability check failed for %s: %v", origin, err)
		return true
	}
	_, reachable := result.Depth[dest]
	return reachable
}

func (e *Enumerator) createODEqualPath(origin, dest string) []model.PathCandidate {
	return []model.PathCandidate{{
		Origin:         origin,
		Dest:           dest,
		PathNodes:      []string{origin, dest},
		PathType:       model.PathDirect,
		SortLevel:      model.SortSortGroup,
		DestSortLevel:  model.SortSortGroup,
		TotalPathMiles: 0,
		DirectMiles:    0,
		ATWFactor:      1.0,
	}}
}

// enumerateRawPaths generates every simple node sequence origin -> ... ->
// dest with up to maxTouches edges (at most three intermediate
// hubs/hybrids). The direct [origin, dest] sequence is always included;
// longer sequences are filtered by isValidPathStructure.
func (e *Enumerator) enumerateRawPaths(origin, dest string) [][]string {
	var paths [][]string
	paths = append(paths, []string{origin, dest})

	if e.maxTouches >= 2 {
		for h := range e.sortingFacilities {
			if h == origin || h == dest {
				continue
			}
			p := []string{origin, h, dest}
			if e.isValidPathStructure(p) {
				paths = append(paths, p)
			}
		}
	}

	if e.maxTouches >= 3 {
		for h1 := range e.sortingFacilities {
			if h1 == origin || h1 == dest {
				continue
			}
			for h2 := range e.sortingFacilities {
				if h2 == origin || h2 == dest || h2 == h1 {
					continue
				}
				p := []string{origin, h1, h2, dest}
				if e.isValidPathStructure(p) {
					paths = append(paths, p)
				}
			}
		}
	}

	if e.maxTouches >= 4 {
		for h1 := range e.sortingFacilities {
			if h1 == origin || h1 == dest {
				continue
			}
			for h2 := range e.sortingFacilities {
				if h2 == origin || h2 == dest || h2 == h1 {
					continue
				}
				for h3 := range e.sortingFacilities {
					if h3 == origin || h3 == dest || h3 == h1 || h3 == h2 {
						continue
					}
					p := []string{origin, h1, h2, h3, dest}
					if e.isValidPathStructure(p) {
						paths = append(paths, p)
					}
				}
			}
		}
	}

	return paths
}

func (e *Enumerator) isValidPathStructure(path []string) bool {
	if len(path) < 2 {
		return false
	}

	origin := path[0]
	dest := path[len(path)-1]

	originFac, ok := e.facilities[origin]
	if !ok || !originFac.IsSortingFacility() {
		return false
	}
	destFac, ok := e.facilities[dest]
	if !ok || !destFac.IsDeliveryFacility() {
		return false
	}

	for _, node := range path[1 : len(path)-1] {
		nodeFac, ok := e.facilities[node]
		if !ok || !nodeFac.IsSortingFacility() {
			return false
		}
	}

	if parent, ok := e.parentHub[dest]; ok {
		originParent := e.parentHub[origin]
		if origin != parent && originParent != parent {
			if !contains(path, parent) {
				return false
			}
		}
	}

	return true
}

func contains(path []string, name string) bool {
	for _, n := range path {
		if n == name {
			return true
		}
	}
	return false
}

// expandPathToCandidates fans a raw node sequence out into its
// sort-level variants (SORT_GROUP/SORT_GROUP and MARKET/MARKET always;
// REGION variants only for non-direct paths whose second-to-last node is
// dest's regional_sort_hub).
func (e *Enumerator) expandPathToCandidates(nodes []string, origin, dest string, directMiles float64) []model.PathCandidate {
	_, totalMiles, err := geo.PathLegs(nodes, e.facilities)
	if err != nil {
		log.Printf("pathenum: %v", err)
		return nil
	}
	atw := geo.CalculateATWFactor(totalMiles, directMiles)

	numTouches := len(nodes) - 1
	pathType := model.PathTypeForTouches(numTouches)
	isDirect := numTouches == 1

	destRegionalHub := e.regionalHub[dest]
	secondToLast := ""
	if len(nodes) >= 2 {
		secondToLast = nodes[len(nodes)-2]
	}

	base := model.PathCandidate{
		Origin: origin, Dest: dest, PathNodes: nodes, PathType: pathType,
		TotalPathMiles: totalMiles, DirectMiles: directMiles, ATWFactor: atw,
	}

	candidates := []model.PathCandidate{base, base}
	candidates[0].SortLevel = model.SortSortGroup
	candidates[0].DestSortLevel = model.SortSortGroup
	candidates[1].SortLevel = model.SortMarket
	candidates[1].DestSortLevel = model.SortMarket

	if !isDirect && destRegionalHub != "" && secondToLast == destRegionalHub {
		region1 := base
		region1.SortLevel = model.SortRegion
		region1.DestSortLevel = model.SortMarket
		region2 := base
		region2.SortLevel = model.SortRegion
		region2.DestSortLevel = model.SortSortGroup
		candidates = append(candidates, region1, region2)
	}

	return candidates
}
