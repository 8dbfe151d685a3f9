// Package feasibility implements FeasibilityChecker: a priority-ordered
// service-commitment index and the SLA annotation/filtering it drives.
package feasibility

import (
	"log"
	"math"

	"github.com/cwr213/sla-path-model/model"
)

const hoursPerDay = 24.0

// Checker answers get_commitment/check_feasibility queries over a fixed
// set of service commitments, indexed by priority bucket at construction.
type Checker struct {
	od      map[odKey]model.ServiceCommitment
	origin  map[string]model.ServiceCommitment
	dest    map[string]model.ServiceCommitment
	zone    map[int]model.ServiceCommitment
	hasDflt bool
	dflt    model.ServiceCommitment
}

type odKey struct{ origin, dest string }

// NewChecker builds a Checker, bucketing each commitment into exactly one
// of od/origin/dest/zone/default by its wildcard shape, in the same
// priority order the lookup in GetCommitment applies.
func NewChecker(commitments []model.ServiceCommitment) *Checker {
	c := &Checker{
		od:     make(map[odKey]model.ServiceCommitment),
		origin: make(map[string]model.ServiceCommitment),
		dest:   make(map[string]model.ServiceCommitment),
		zone:   make(map[int]model.ServiceCommitment),
	}

	for _, sc := range commitments {
		switch {
		case sc.Origin != "*" && sc.Dest != "*":
			c.od[odKey{sc.Origin, sc.Dest}] = sc
		case sc.Origin != "*" && sc.Dest == "*":
			c.origin[sc.Origin] = sc
		case sc.Origin == "*" && sc.Dest != "*":
			c.dest[sc.Dest] = sc
		case sc.Zone != nil:
			c.zone[*sc.Zone] = sc
		default:
			c.dflt = sc
			c.hasDflt = true
		}
	}

	return c
}

// GetCommitment resolves the applicable commitment for (origin, dest,
// zone) in priority order: specific OD, origin-specific, dest-specific,
// zone-based, default. Returns false if nothing matches (no default
// commitment was configured).
func (c *Checker) GetCommitment(origin, dest string, zone int) (model.ServiceCommitment, bool) {
	if sc, ok := c.od[odKey{origin, dest}]; ok {
		return sc, true
	}
	if sc, ok := c.origin[origin]; ok {
		return sc, true
	}
	if sc, ok := c.dest[dest]; ok {
		return sc, true
	}
	if sc, ok := c.zone[zone]; ok {
		return sc, true
	}
	if c.hasDflt {
		return c.dflt, true
	}
	return model.ServiceCommitment{}, false
}

// CheckFeasibility resolves the applicable commitment for the path's OD
// and zone, then mutates timing in place with the SLA annotation fields.
// A path with no applicable commitment is treated as unconstrained: it
// always passes, with an infinite target and slack.
func (c *Checker) CheckFeasibility(timing *model.PathTimingResult, zone int) {
	commitment, ok := c.GetCommitment(timing.Path.Origin, timing.Path.Dest, zone)
	if !ok {
		timing.SLADays = 0
		timing.SLABufferDays = 0
		timing.SLATargetHours = math.Inf(1)
		timing.SLAMet = true
		timing.SLASlackHours = math.Inf(1)
		timing.PriorityWeight = 1.0
		timing.SLAConstrained = false
		return
	}

	target := commitment.TargetHours()
	timing.SLAConstrained = true
	timing.SLADays = commitment.SLADays
	timing.SLABufferDays = commitment.SLABufferDays
	timing.SLATargetHours = target
	timing.SLAMet = timing.TITHours <= target
	timing.SLASlackHours = target - timing.TITHours
	timing.PriorityWeight = commitment.PriorityWeight
}

// CheckAll annotates every PathTimingResult in odTimings in place, looking
// up each OD pair's zone from odZones (defaulting to zone 1 when absent).
func CheckAll(odTimings map[model.ODKey][]model.PathTimingResult, odZones map[model.ODKey]int, commitments []model.ServiceCommitment) {
	checker := NewChecker(commitments)

	total, met := 0, 0
	for key, timings := range odTimings {
		zone, ok := odZones[key]
		if !ok {
			zone = 1
		}
		for i := range timings {
			checker.CheckFeasibility(&timings[i], zone)
			total++
			if timings[i].SLAMet {
				met++
			}
		}
	}

	pct := 0.0
	if total > 0 {
		pct = 100 * float64(met) / float64(total)
	}
	log.Printf("feasibility: %d/%d paths meet SLA (%.1f%%)", met, total, pct)
}

// FilterFeasible returns only the SLAMet==true results per OD pair,
// dropping OD pairs left with no feasible path entirely. When includeAll
// is true, odTimings is returned unchanged (the default reporting mode:
// every path is kept, with SLAMet as an annotation rather than a filter).
func FilterFeasible(odTimings map[model.ODKey][]model.PathTimingResult, includeAll bool) map[model.ODKey][]model.PathTimingResult {
	if includeAll {
		return odTimings
	}

	filtered := make(map[model.ODKey][]model.PathTimingResult, len(odTimings))
	for key, timings := range odTimings {
		var feasible []model.PathTimingResult
		for _, t := range timings {
			if t.SLAMet {
				feasible = append(feasible, t)
			}
		}
		if len(feasible) > 0 {
			filtered[key] = feasible
		}
	}
	return filtered
}
