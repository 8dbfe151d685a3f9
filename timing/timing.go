// Package timing implements TimingEngine: a deterministic forward-chained
// step trace from a fixed injection instant to arrival for a single
// PathCandidate, invoking the cpt and timeutil packages at each hop.
package timing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cwr213/sla-path-model/cpt"
	"github.com/cwr213/sla-path-model/geo"
	"github.com/cwr213/sla-path-model/model"
	"github.com/cwr213/sla-path-model/timeutil"
)

// fallbackMPH is the assumed linehaul speed when no mileage band matches
// a leg's distance.
const fallbackMPH = 50.0

// Engine computes PathTimingResults against a fixed facility network,
// mileage-band table, CPT table, and timing parameters.
type Engine struct {
	facilities   map[string]model.Facility
	bands        []model.MileageBand
	cptTable     *cpt.Table
	timingParams model.TimingParams
	settings     model.RunSettings
}

// NewEngine builds an Engine.
func NewEngine(facilities map[string]model.Facility, bands []model.MileageBand, cptTable *cpt.Table, params model.TimingParams, settings model.RunSettings) *Engine {
	return &Engine{facilities: facilities, bands: bands, cptTable: cptTable, timingParams: params, settings: settings}
}

// CalculatePathTiming forward-chains a single deterministic step trace for
// candidate, from the run's fixed reference injection instant.
func (e *Engine) CalculatePathTiming(ctx context.Context, candidate model.PathCandidate) (model.PathTimingResult, error) {
	select {
	case <-ctx.Done():
		return model.PathTimingResult{}, ctx.Err()
	default:
	}

	nodes := candidate.PathNodes
	if len(nodes) < 2 {
		return model.PathTimingResult{}, &InternalError{
			Origin: candidate.Origin, Dest: candidate.Dest, Path: nodes,
			Reason: "path candidate has fewer than two nodes",
		}
	}

	originFac, ok := e.facilities[nodes[0]]
	if !ok {
		return model.PathTimingResult{}, &InternalError{
			Origin: candidate.Origin, Dest: candidate.Dest, Path: nodes,
			Reason: fmt.Sprintf("unknown origin facility %q", nodes[0]),
		}
	}

	injectionUTC := timeutil.LocalNaiveToUTC(e.settings.ReferenceInjectionDate, e.settings.ReferenceInjectionTime, originFac.Zone)

	result := model.PathTimingResult{
		Path:                 candidate,
		RequiredInjectionUTC: injectionUTC,
		UsesOnlyActiveArcs:   true,
	}

	seq := 0

	// Step 1: induction sort at origin.
	sortStart, windowDwell := injectionUTC, 0.0
	if originFac.MMSortWindow != nil {
		sortStart, windowDwell = timeutil.AlignToWindowStart(injectionUTC, *originFac.MMSortWindow, e.timingParams.InductionSortMinutes)
	}
	inductionEnd := sortStart.Add(minutesToDuration(e.timingParams.InductionSortMinutes))
	result.Steps = append(result.Steps, model.InductionSortStep{
		StepCommon: model.StepCommon{
			Seq: seq, From: nodes[0], To: nodes[0],
			StartUTC: sortStart, EndUTC: inductionEnd,
			DurationMinutes:        e.timingParams.InductionSortMinutes,
			SortWindowDwellMinutes: windowDwell,
		},
	})
	seq++
	current := inductionEnd
	result.SortWindowDwellHours += windowDwell / 60.0
	e.checkWindowAlignment(&result, nodes[0], originFac.MMSortWindow, e.timingParams.InductionSortMinutes, inductionEnd)

	isODEqual := nodes[0] == nodes[len(nodes)-1] && len(nodes) == 2

	if !isODEqual {
		destRegionalHub := e.facilities[candidate.Dest].RegionalSortHub
		secondToLastIdx := len(nodes) - 2

		for i := 0; i < len(nodes)-1; i++ {
			select {
			case <-ctx.Done():
				return model.PathTimingResult{}, ctx.Err()
			default:
			}

			u, v := nodes[i], nodes[i+1]

			cptUTC, cptDwell, isActive := e.cptTable.NextCPTAtOrAfter(u, v, current)
			if !isActive {
				result.UsesOnlyActiveArcs = false
				e.checkCPTCoverage(&result, u, v, current)
			}

			distance, transitMinutes, err := e.transitMinutesFor(u, v)
			if err != nil {
				return model.PathTimingResult{}, &InternalError{
					Origin: candidate.Origin, Dest: candidate.Dest, Path: nodes,
					Reason: fmt.Sprintf("transit calculation for arc %s->%s", u, v), Err: err,
				}
			}

			transitEnd := cptUTC.Add(minutesToDuration(transitMinutes))
			result.Steps = append(result.Steps, model.TransitStep{
				StepCommon: model.StepCommon{
					Seq: seq, From: u, To: v,
					StartUTC: cptUTC, EndUTC: transitEnd,
					DurationMinutes: transitMinutes,
					CPTDwellMinutes: cptDwell,
				},
				DistanceMiles: distance,
				CPTIsActive:   isActive,
			})
			seq++
			result.CPTDwellHours += cptDwell / 60.0
			current = transitEnd

			isLastEdge := i == len(nodes)-2
			if isLastEdge {
				continue // destination processing handled after the loop
			}

			isRegionalSortHub := i+1 == secondToLastIdx && v == destRegionalHub
			fullSort := candidate.SortLevel == model.SortRegion && isRegionalSortHub

			var kind model.StepKind
			var duration float64
			if fullSort {
				kind = model.FullSort
				duration = e.timingParams.MiddleMileSortMinutes
			} else {
				kind = model.Crossdock
				duration = e.timingParams.MiddleMileCrossdockMinutes
			}

			vFac := e.facilities[v]
			procStart, procDwell := current, 0.0
			if vFac.MMSortWindow != nil {
				procStart, procDwell = timeutil.AlignToWindowStart(current, *vFac.MMSortWindow, duration)
			}
			procEnd := procStart.Add(minutesToDuration(duration))
			result.Steps = append(result.Steps, model.NewProcessingStep(kind, model.StepCommon{
				Seq: seq, From: v, To: v,
				StartUTC: procStart, EndUTC: procEnd,
				DurationMinutes:        duration,
				SortWindowDwellMinutes: procDwell,
			}))
			seq++
			result.SortWindowDwellHours += procDwell / 60.0
			current = procEnd
			e.checkWindowAlignment(&result, v, vFac.MMSortWindow, duration, procEnd)
		}

		destFac := e.facilities[candidate.Dest]
		if candidate.DestSortLevel == model.SortMarket && destFac.IsDeliveryFacility() {
			lmStart, lmDwell := current, 0.0
			if destFac.LMSortWindow != nil {
				lmStart, lmDwell = timeutil.AlignToWindowStart(current, *destFac.LMSortWindow, e.timingParams.LastMileSortMinutes)
			}
			lmEnd := lmStart.Add(minutesToDuration(e.timingParams.LastMileSortMinutes))
			result.Steps = append(result.Steps, model.LastMileSortStep{
				StepCommon: model.StepCommon{
					Seq: seq, From: candidate.Dest, To: candidate.Dest,
					StartUTC: lmStart, EndUTC: lmEnd,
					DurationMinutes:        e.timingParams.LastMileSortMinutes,
					SortWindowDwellMinutes: lmDwell,
				},
			})
			seq++
			result.SortWindowDwellHours += lmDwell / 60.0
			current = lmEnd
			e.checkWindowAlignment(&result, candidate.Dest, destFac.LMSortWindow, e.timingParams.LastMileSortMinutes, lmEnd)
		}
	}

	result.DeliveryUTC = current
	result.TITHours = current.Sub(injectionUTC).Hours()
	result.TotalDwellHours = result.SortWindowDwellHours + result.CPTDwellHours

	if !result.UsesOnlyActiveArcs {
		log.Printf("timing: od=%s->%s path=%v has an inactive or missing CPT arc", candidate.Origin, candidate.Dest, candidate.PathNodes)
	}

	return result, nil
}

// checkWindowAlignment cross-checks a forward-aligned processing step
// against the backward-chain aligner: if arriving at stepEnd and working
// backward by processingMinutes would have to clamp to fit the window,
// that's recorded as a TimingAnomaly rather than silently ignored.
func (e *Engine) checkWindowAlignment(result *model.PathTimingResult, node string, w *model.SortWindow, processingMinutes float64, stepEnd time.Time) {
	if w == nil {
		return
	}
	_, _, clamped := timeutil.AlignToWindowEnd(stepEnd, *w, processingMinutes)
	if !clamped {
		return
	}
	result.Anomalies = append(result.Anomalies, model.TimingAnomaly{
		Node: node,
		Reason: fmt.Sprintf("processing time of %.1f min exceeds the %.1f min sort window at %s; backward-chain dwell was clamped",
			processingMinutes, w.DurationMinutes(), node),
	})
}

// checkCPTCoverage is called when the forward CPT search found nothing
// active for an arc. It runs the symmetric backward search to determine
// whether the arc has no schedule at all versus one that simply doesn't
// cover readyUTC, and records a TimingAnomaly either way.
func (e *Engine) checkCPTCoverage(result *model.PathTimingResult, u, v string, readyUTC time.Time) {
	_, _, backwardActive := e.cptTable.LatestCPTAtOrBefore(u, v, readyUTC)
	reason := fmt.Sprintf("no active CPT found on arc %s->%s within +/-%d days of the ready time", u, v, cpt.SearchDays)
	if backwardActive {
		reason = fmt.Sprintf("no active CPT found on arc %s->%s at or after the ready time, though one exists earlier", u, v)
	}
	result.Anomalies = append(result.Anomalies, model.TimingAnomaly{
		Node:   fmt.Sprintf("%s->%s", u, v),
		Reason: reason,
	})
}

// transitMinutesFor computes the leg distance between u and v and the
// transit minutes for it, falling back to miles/50mph when no mileage
// band matches.
func (e *Engine) transitMinutesFor(u, v string) (distanceMiles, minutes float64, err error) {
	uFac, ok := e.facilities[u]
	if !ok {
		return 0, 0, fmt.Errorf("unknown facility %q", u)
	}
	vFac, ok := e.facilities[v]
	if !ok {
		return 0, 0, fmt.Errorf("unknown facility %q", v)
	}

	distance := geo.GreatCircleMiles(uFac.Lat, uFac.Lon, vFac.Lat, vFac.Lon)

	band, found := geo.ZoneForDistance(distance, e.bands)
	if !found {
		return distance, distance / fallbackMPH * 60.0, nil
	}

	minutes, err = geo.TransitMinutes(distance, band.CircuityFactor, band.MPH)
	if err != nil {
		return 0, 0, err
	}
	return distance, minutes, nil
}

// minutesToDuration converts a fractional-minute float into a time.Duration.
func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}
