// Package demand implements DemandBuilder: destination shares by
// population, regional-hub mapping, injection shares, and the
// per-scenario OD matrix across the direct-injection, zone-skip, and
// middle-mile flow families.
package demand

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/cwr213/sla-path-model/geo"
	"github.com/cwr213/sla-path-model/model"
)

// minPackages is the drop threshold below which a computed OD volume is
// discarded as noise.
const minPackages = 0.01

// Builder computes the OD demand matrix for a facility network and its
// demand/injection/scenario inputs.
type Builder struct {
	facilities map[string]model.Facility
	bands      []model.MileageBand

	destShares        map[string]float64
	facilityToRegional map[string]string
	injectionShares    map[string]float64

	demandByYear map[int]model.DemandRow
	scenarios    []model.ScenarioRow
}

// NewBuilder constructs a Builder and precomputes destination shares,
// the regional-hub mapping, and injection shares.
func NewBuilder(
	facilities map[string]model.Facility,
	zips []model.ZipRow,
	demandRows []model.DemandRow,
	injectionRows []model.InjectionRow,
	scenarios []model.ScenarioRow,
	bands []model.MileageBand,
) *Builder {
	sorted := append([]model.MileageBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Zone < sorted[j].Zone })

	b := &Builder{
		facilities:   facilities,
		bands:        sorted,
		demandByYear: make(map[int]model.DemandRow),
		scenarios:    scenarios,
	}

	for _, row := range demandRows {
		b.demandByYear[row.Year] = row
	}

	b.buildDestinationShares(zips)
	b.buildRegionalHubMapping()
	b.buildInjectionShares(injectionRows)

	return b
}

func (b *Builder) buildDestinationShares(zips []model.ZipRow) {
	b.destShares = make(map[string]float64)

	if len(zips) == 0 {
		var deliveryFacs []string
		for name, fac := range b.facilities {
			if fac.Type == model.Launch || fac.Type == model.Hybrid {
				deliveryFacs = append(deliveryFacs, name)
			}
		}
		if n := len(deliveryFacs); n > 0 {
			for _, name := range deliveryFacs {
				b.destShares[name] = 1.0 / float64(n)
			}
		}
		log.Printf("demand: no zip data, equally distributing across %d launch/hybrid facilities", len(deliveryFacs))
		return
	}

	popByFacility := make(map[string]float64)
	var totalPop float64
	for _, z := range zips {
		name := strings.TrimSpace(z.FacilityNameAssigned)
		popByFacility[name] += z.Population
		totalPop += z.Population
	}

	if totalPop > 0 {
		for name, pop := range popByFacility {
			b.destShares[name] = pop / totalPop
		}
	}

	log.Printf("demand: built destination shares for %d facilities", len(b.destShares))
}

func (b *Builder) buildRegionalHubMapping() {
	b.facilityToRegional = make(map[string]string)
	for name, fac := range b.facilities {
		if fac.RegionalSortHub != "" {
			b.facilityToRegional[name] = fac.RegionalSortHub
		}
	}
}

func (b *Builder) buildInjectionShares(rows []model.InjectionRow) {
	b.injectionShares = make(map[string]float64)
	var total float64
	for _, row := range rows {
		name := strings.TrimSpace(row.FacilityName)
		b.injectionShares[name] = row.AbsoluteShare
		total += row.AbsoluteShare
	}
	if abs(total-1.0) > 0.01 {
		log.Printf("demand: injection shares sum to %.3f, expected 1.0", total)
	}
	log.Printf("demand: built injection shares for %d facilities", len(b.injectionShares))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

type demandParams struct {
	dailyPkgs float64
	mmShare   float64
	zsShare   float64
	diShare   float64
}

func (b *Builder) demandParams(scenarioID string, year int, dayType string) (demandParams, error) {
	row, ok := b.demandByYear[year]
	if !ok {
		return demandParams{}, &NoDataForScenario{ScenarioID: scenarioID, Year: year}
	}

	var pctOfAnnual, mm, zs, di float64
	if dayType == "peak" {
		pctOfAnnual, mm, zs, di = row.PeakPctOfAnnual, row.MiddleMileSharePeak, row.ZoneSkipSharePeak, row.DirectInjectionSharePeak
	} else {
		pctOfAnnual, mm, zs, di = row.OffpeakPctOfAnnual, row.MiddleMileShareOffpeak, row.ZoneSkipShareOffpeak, row.DirectInjectionShareOffpeak
	}

	total := mm + zs + di
	if abs(total-1.0) > 0.01 {
		return demandParams{}, fmt.Errorf("demand: flow shares must sum to 1.0, got %.4f (mm=%.4f zs=%.4f di=%.4f)", total, mm, zs, di)
	}

	return demandParams{
		dailyPkgs: row.AnnualPkgs * pctOfAnnual,
		mmShare:   mm, zsShare: zs, diShare: di,
	}, nil
}

func (b *Builder) calculateZone(origin, dest string) int {
	o, d := b.facilities[origin], b.facilities[dest]
	distance := geo.GreatCircleMiles(o.Lat, o.Lon, d.Lat, d.Lon)
	band, found := geo.ZoneForDistance(distance, b.bands)
	if found {
		return band.Zone
	}
	if len(b.bands) > 0 {
		return b.bands[len(b.bands)-1].Zone
	}
	return -1
}

// BuildDemands builds the OD demand list for every configured scenario.
func (b *Builder) BuildDemands() ([]model.ODDemand, error) {
	var demands []model.ODDemand

	for _, scenario := range b.scenarios {
		dayType := strings.ToLower(strings.TrimSpace(scenario.DayType))
		params, err := b.demandParams(scenario.ScenarioID, scenario.Year, dayType)
		if err != nil {
			return nil, err
		}
		if params.dailyPkgs <= 0 {
			log.Printf("demand: scenario %s has zero daily packages, skipping", scenario.ScenarioID)
			continue
		}

		scenarioDemands := b.buildODMatrix(scenario.ScenarioID, params, dayType)
		demands = append(demands, scenarioDemands...)

		log.Printf("demand: scenario %s built %d OD pairs, %.0f pkgs/day", scenario.ScenarioID, len(scenarioDemands), params.dailyPkgs)
	}

	log.Printf("demand: built %d total OD demand records", len(demands))
	return demands, nil
}

func (b *Builder) buildODMatrix(scenarioID string, params demandParams, dayType string) []model.ODDemand {
	var demands []model.ODDemand

	// 1. Direct injection: O=D at facility_name_assigned, zone 0.
	diDaily := params.dailyPkgs * params.diShare
	if diDaily > 0 {
		for dest, share := range b.destShares {
			pkgs := diDaily * share
			if pkgs < minPackages {
				continue
			}
			if _, ok := b.facilities[dest]; !ok {
				continue
			}
			demands = append(demands, model.ODDemand{
				ScenarioID: scenarioID, Origin: dest, Dest: dest,
				PackagesPerDay: pkgs, Zone: 0,
				FlowType: model.DirectInjection, DayType: dayType,
			})
		}
	}

	// 2. Zone skip: origin = dest's regional_sort_hub, dest = facility_name_assigned.
	zsDaily := params.dailyPkgs * params.zsShare
	if zsDaily > 0 {
		for dest, share := range b.destShares {
			if _, ok := b.facilities[dest]; !ok {
				continue
			}
			regionalHub, ok := b.facilityToRegional[dest]
			if !ok || regionalHub == "" {
				continue
			}
			if _, ok := b.facilities[regionalHub]; !ok {
				log.Printf("demand: regional hub %q not in facilities, skipping dest %q", regionalHub, dest)
				continue
			}
			pkgs := zsDaily * share
			if pkgs < minPackages {
				continue
			}
			zone := b.calculateZone(regionalHub, dest)
			demands = append(demands, model.ODDemand{
				ScenarioID: scenarioID, Origin: regionalHub, Dest: dest,
				PackagesPerDay: pkgs, Zone: zone,
				FlowType: model.ZoneSkip, DayType: dayType,
			})
		}
	}

	// 3. Middle mile: origin per injection_distribution, dest per population.
	mmDaily := params.dailyPkgs * params.mmShare
	if mmDaily > 0 {
		for origin, injShare := range b.injectionShares {
			if injShare < 0.0001 {
				continue
			}
			if _, ok := b.facilities[origin]; !ok {
				log.Printf("demand: unknown injection facility %q", origin)
				continue
			}
			originMM := mmDaily * injShare

			for dest, destShare := range b.destShares {
				pkgs := originMM * destShare
				if pkgs < minPackages {
					continue
				}
				if _, ok := b.facilities[dest]; !ok {
					continue
				}
				if origin == dest && b.facilities[origin].Type != model.Hybrid {
					continue
				}

				zone := b.calculateZone(origin, dest)
				demands = append(demands, model.ODDemand{
					ScenarioID: scenarioID, Origin: origin, Dest: dest,
					PackagesPerDay: pkgs, Zone: zone,
					FlowType: model.MiddleMile, DayType: dayType,
				})
			}
		}
	}

	return demands
}
