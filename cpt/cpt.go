// Package cpt implements CPTTable: the per-arc trailer departure schedule,
// built from explicit overrides unioned with schedules synthesized from
// each facility's outbound window and CPT count, plus the bounded-window
// next/latest CPT search.
package cpt

import (
	"log"
	"time"

	"github.com/cwr213/sla-path-model/model"
	"github.com/cwr213/sla-path-model/timeutil"
)

const wildcardDest = "*"

// SearchDays is how many days forward (next) / backward (latest) the CPT
// search explores before giving up.
const SearchDays = 4

// Table answers cpts_for_arc / next_cpt_at_or_after / latest_cpt_at_or_before
// queries over a facility network's CPT schedule.
type Table struct {
	explicit  map[string][]model.CPT // key: origin + "->" + dest
	generated map[string][]model.CPT // key: origin, dest == "*" template
}

func arcKey(origin, dest string) string { return origin + "->" + dest }

// Build constructs a Table from the facility map and explicit CPT
// overrides loaded from arc_cpts.csv.
func Build(facilities map[string]model.Facility, explicitCPTs []model.CPT) *Table {
	t := &Table{
		explicit:  make(map[string][]model.CPT),
		generated: make(map[string][]model.CPT),
	}
	for _, c := range explicitCPTs {
		k := arcKey(c.Origin, c.Dest)
		t.explicit[k] = append(t.explicit[k], c)
	}
	for name, fac := range facilities {
		if fac.Type != model.Hub && fac.Type != model.Hybrid {
			continue
		}
		if fac.OutboundWindow == nil || fac.OutboundCPTCount == nil || *fac.OutboundCPTCount < 1 {
			continue
		}
		t.generated[name] = generateFacilityCPTs(name, *fac.OutboundWindow, *fac.OutboundCPTCount)
	}
	return t
}

// generateFacilityCPTs builds the evenly-spaced synthesized schedule for a
// facility's outbound window: n=1 -> single CPT at end_local; n>1 ->
// spacing = duration/(n-1) starting at start_local, wrapping past
// midnight.
func generateFacilityCPTs(origin string, w model.SortWindow, n int) []model.CPT {
	cpts := make([]model.CPT, 0, n)
	if n == 1 {
		cpts = append(cpts, model.CPT{
			Origin: origin, Dest: wildcardDest, Sequence: 0,
			LocalTime: w.EndLocal, Zone: w.Zone, IsActive: true,
		})
		return cpts
	}

	duration := w.DurationMinutes()
	spacing := duration / float64(n-1)
	for i := 0; i < n; i++ {
		minute := (int(w.StartLocal) + int(float64(i)*spacing)) % 1440
		cpts = append(cpts, model.CPT{
			Origin: origin, Dest: wildcardDest, Sequence: i,
			LocalTime: model.Clock(minute), Zone: w.Zone, IsActive: true,
		})
	}
	return cpts
}

// CPTsForArc resolves the schedule for (origin, dest): an explicit entry
// wins verbatim; otherwise a generated template is rebound to dest;
// otherwise the arc has no CPTs.
func (t *Table) CPTsForArc(origin, dest string) []model.CPT {
	if explicit, ok := t.explicit[arcKey(origin, dest)]; ok {
		return explicit
	}
	if generated, ok := t.generated[origin]; ok {
		rebound := make([]model.CPT, len(generated))
		for i, c := range generated {
			c.Dest = dest
			rebound[i] = c
		}
		return rebound
	}
	log.Printf("cpt: no schedule for arc %s->%s, generating none", origin, dest)
	return nil
}

// NextCPTAtOrAfter searches day_offset in [0, SearchDays] from readyUTC's
// local date at origin for the earliest CPT (honoring day-of-week masks)
// at or after readyUTC. If the arc has no CPTs, or none is found in the
// window, it returns (readyUTC, 0, false) — the false propagates to the
// path's uses_only_active_arcs flag.
func (t *Table) NextCPTAtOrAfter(origin, dest string, readyUTC time.Time) (time.Time, float64, bool) {
	cpts := t.CPTsForArc(origin, dest)
	if len(cpts) == 0 {
		return readyUTC, 0, false
	}

	var best time.Time
	var bestActive bool
	found := false

	for _, c := range cpts {
		localDate, _ := timeutil.UTCToLocalNaive(readyUTC, c.Zone)
		for offset := 0; offset <= SearchDays; offset++ {
			day := localDate.AddDate(0, 0, offset)
			if !c.RunsOn(day.Weekday()) {
				continue
			}
			candidateUTC := timeutil.LocalNaiveToUTC(day, c.LocalTime, c.Zone)
			if candidateUTC.Before(readyUTC) {
				continue
			}
			if !found || candidateUTC.Before(best) {
				best = candidateUTC
				bestActive = c.IsActive
				found = true
			}
		}
	}

	if !found {
		return readyUTC, 0, false
	}
	dwell := best.Sub(readyUTC).Minutes()
	if dwell < 0 {
		dwell = 0
	}
	return best, dwell, bestActive
}

// LatestCPTAtOrBefore is the symmetric backward search: the latest CPT at
// or before targetUTC. The timing engine calls this when the forward
// search finds nothing, to distinguish "no schedule on this arc at all"
// from "the next CPT just falls outside the search window" when
// composing a TimingAnomaly.
func (t *Table) LatestCPTAtOrBefore(origin, dest string, targetUTC time.Time) (time.Time, float64, bool) {
	cpts := t.CPTsForArc(origin, dest)
	if len(cpts) == 0 {
		return targetUTC, 0, false
	}

	var best time.Time
	var bestActive bool
	found := false

	for _, c := range cpts {
		localDate, _ := timeutil.UTCToLocalNaive(targetUTC, c.Zone)
		for offset := 0; offset <= SearchDays; offset++ {
			day := localDate.AddDate(0, 0, -offset)
			if !c.RunsOn(day.Weekday()) {
				continue
			}
			candidateUTC := timeutil.LocalNaiveToUTC(day, c.LocalTime, c.Zone)
			if candidateUTC.After(targetUTC) {
				continue
			}
			if !found || candidateUTC.After(best) {
				best = candidateUTC
				bestActive = c.IsActive
				found = true
			}
		}
	}

	if !found {
		return targetUTC, 0, false
	}
	dwell := targetUTC.Sub(best).Minutes()
	if dwell < 0 {
		dwell = 0
	}
	return best, dwell, bestActive
}
