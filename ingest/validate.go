package ingest

import (
	"fmt"
	"log"
	"sort"

	"github.com/cwr213/sla-path-model/model"
)

// Validate checks a loaded Data for structural consistency. Warnings are
// logged and do not stop the run; errors are batched and returned as a
// single *ValidationFailure.
func Validate(data *Data) error {
	var v validator
	v.data = data

	v.validateFacilities()
	v.validateFacilityReferences()
	v.validateInjectionNodes()
	v.validateMileageBands()
	v.validateTimingParams()
	v.validateScenarios()
	v.validateServiceCommitments()

	for _, w := range v.warnings {
		log.Printf("ingest: validation warning: %s", w)
	}

	if len(v.errors) > 0 {
		for _, e := range v.errors {
			log.Printf("ingest: validation error: %s", e)
		}
		return &ValidationFailure{Errors: v.errors}
	}

	log.Printf("ingest: input validation passed")
	return nil
}

type validator struct {
	data     *Data
	errors   []string
	warnings []string
}

func (v *validator) errf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateFacilities() {
	for name, fac := range v.data.Facilities {
		if fac.Lat < -90 || fac.Lat > 90 {
			v.errf("facility %s has invalid latitude: %v", name, fac.Lat)
		}
		if fac.Lon < -180 || fac.Lon > 180 {
			v.errf("facility %s has invalid longitude: %v", name, fac.Lon)
		}

		if fac.Type == model.Hub || fac.Type == model.Hybrid {
			if fac.MMSortWindow == nil {
				v.warnf("facility %s (%s) missing MM sort window", name, fac.Type)
			}
		}
		if fac.Type == model.Launch || fac.Type == model.Hybrid {
			if fac.LMSortWindow == nil {
				v.warnf("facility %s (%s) missing LM sort window", name, fac.Type)
			}
		}

		if fac.IsInjectionNode {
			if fac.OutboundWindow == nil {
				v.errf("injection facility %s missing outbound window", name)
			}
			if fac.OutboundCPTCount == nil || *fac.OutboundCPTCount < 1 {
				v.errf("injection facility %s must have outbound_cpt_count >= 1", name)
			}
		}
	}
}

func (v *validator) validateFacilityReferences() {
	for name, fac := range v.data.Facilities {
		if fac.ParentHubName != "" {
			if _, ok := v.data.Facilities[fac.ParentHubName]; !ok {
				v.errf("facility %s references unknown parent_hub_name: %s", name, fac.ParentHubName)
			}
		}
		if fac.RegionalSortHub != "" {
			if _, ok := v.data.Facilities[fac.RegionalSortHub]; !ok {
				v.errf("facility %s references unknown regional_sort_hub: %s", name, fac.RegionalSortHub)
			}
		}
	}
}

func (v *validator) validateInjectionNodes() {
	injectionFacs := make(map[string]bool, len(v.data.Injection))

	for _, row := range v.data.Injection {
		injectionFacs[row.FacilityName] = true

		fac, ok := v.data.Facilities[row.FacilityName]
		if !ok {
			v.errf("injection distribution references unknown facility: %s", row.FacilityName)
			continue
		}
		if !fac.IsInjectionNode {
			v.warnf("facility %s in injection distribution but is_injection_node=false", row.FacilityName)
		}
		if fac.Type != model.Hub && fac.Type != model.Hybrid {
			v.errf("injection facility %s must be hub or hybrid, got %s", row.FacilityName, fac.Type)
		}
	}

	for name, fac := range v.data.Facilities {
		if fac.IsInjectionNode && !injectionFacs[name] {
			v.warnf("facility %s has is_injection_node=true but not in injection_distribution", name)
		}
	}
}

func (v *validator) validateMileageBands() {
	bands := v.data.MileageBands
	if len(bands) == 0 {
		v.errf("no mileage bands defined")
		return
	}

	zones := make([]int, len(bands))
	for i, b := range bands {
		zones[i] = b.Zone
	}
	if !sort.IntsAreSorted(zones) {
		v.errf("mileage band zones must be in ascending order: got %v", zones)
	}

	for i := 0; i < len(zones)-1; i++ {
		if zones[i+1]-zones[i] != 1 {
			v.warnf("gap in mileage band zones: %d to %d", zones[i], zones[i+1])
		}
	}

	for i := 0; i < len(bands)-1; i++ {
		cur, next := bands[i], bands[i+1]
		switch {
		case cur.MilesMax > next.MilesMin:
			v.errf("mileage bands overlap: zone %d max (%v) > zone %d min (%v)", cur.Zone, cur.MilesMax, next.Zone, next.MilesMin)
		case cur.MilesMax < next.MilesMin:
			v.warnf("gap in mileage bands between zone %d and %d: %v to %v", cur.Zone, next.Zone, cur.MilesMax, next.MilesMin)
		}
	}

	for _, b := range bands {
		if b.CircuityFactor < 1.0 {
			v.warnf("zone %d has circuity_factor < 1.0: %v", b.Zone, b.CircuityFactor)
		}
		if b.MPH <= 0 {
			v.errf("zone %d has non-positive mph: %v", b.Zone, b.MPH)
		}
	}
}

func (v *validator) validateTimingParams() {
	t := v.data.TimingParams
	if t.InductionSortMinutes < 0 {
		v.errf("induction_sort_minutes must be non-negative: %v", t.InductionSortMinutes)
	}
	if t.MiddleMileCrossdockMinutes < 0 {
		v.errf("middle_mile_crossdock_minutes must be non-negative: %v", t.MiddleMileCrossdockMinutes)
	}
	if t.MiddleMileSortMinutes < 0 {
		v.errf("middle_mile_sort_minutes must be non-negative: %v", t.MiddleMileSortMinutes)
	}
	if t.LastMileSortMinutes < 0 {
		v.errf("last_mile_sort_minutes must be non-negative: %v", t.LastMileSortMinutes)
	}
}

func (v *validator) validateScenarios() {
	validYears := make(map[int]bool, len(v.data.Demand))
	for _, d := range v.data.Demand {
		validYears[d.Year] = true
	}

	for _, s := range v.data.Scenarios {
		if !validYears[s.Year] {
			v.errf("scenario %s references unknown year: %d", s.ScenarioID, s.Year)
		}
		if s.DayType != "peak" && s.DayType != "offpeak" {
			v.errf("scenario %s has invalid day_type: %s (must be peak or offpeak)", s.ScenarioID, s.DayType)
		}
	}
}

func (v *validator) validateServiceCommitments() {
	validZones := map[int]bool{0: true}
	for _, b := range v.data.MileageBands {
		validZones[b.Zone] = true
	}

	for _, sc := range v.data.ServiceCommitments {
		if sc.Origin != "*" {
			if _, ok := v.data.Facilities[sc.Origin]; !ok {
				v.errf("service commitment references unknown origin: %s", sc.Origin)
			}
		}
		if sc.Dest != "*" {
			if _, ok := v.data.Facilities[sc.Dest]; !ok {
				v.errf("service commitment references unknown dest: %s", sc.Dest)
			}
		}
		if sc.Zone != nil && !validZones[*sc.Zone] {
			v.warnf("service commitment references zone %d not in mileage_bands", *sc.Zone)
		}
		if sc.SLADays < 1 {
			v.errf("service commitment sla_days must be >= 1: %d", sc.SLADays)
		}
		if sc.SLABufferDays < 0 {
			v.warnf("service commitment has negative sla_buffer_days: %v", sc.SLABufferDays)
		}
		if sc.PriorityWeight <= 0 {
			v.errf("service commitment priority_weight must be positive: %v", sc.PriorityWeight)
		}
	}
}
