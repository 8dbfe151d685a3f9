// Package ingest implements InputLoader: a CSV-directory reader for every
// required input table plus the optional arc_cpts override table.
package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/cwr213/sla-path-model/model"
	"github.com/cwr213/sla-path-model/timeutil"
)

// requiredFiles lists every CSV the Loader must find under its input
// directory (arc_cpts is optional).
var requiredFiles = []string{
	"facilities.csv", "zips.csv", "demand.csv", "injection_distribution.csv",
	"scenarios.csv", "mileage_bands.csv", "timing_params.csv",
	"service_commitments.csv", "run_settings.csv",
}

// Data is every table a run needs, already converted to domain types.
type Data struct {
	Facilities         map[string]model.Facility
	Zips               []model.ZipRow
	Demand             []model.DemandRow
	Injection          []model.InjectionRow
	Scenarios          []model.ScenarioRow
	MileageBands       []model.MileageBand
	TimingParams       model.TimingParams
	ArcCPTs            []model.CPT
	ServiceCommitments []model.ServiceCommitment
	RunSettings        model.RunSettings
}

// Loader reads a directory of CSV files into a Data.
type Loader struct {
	dir string
}

// NewLoader builds a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll reads and parses every input table, returning a *LoadFailure if
// the directory or a required file is missing, or a *SchemaFailure if a
// table's values can't be parsed.
func (l *Loader) LoadAll() (*Data, error) {
	if _, err := os.Stat(l.dir); err != nil {
		return nil, &LoadFailure{Path: l.dir, Reason: "input directory not found"}
	}
	var missing []string
	for _, name := range requiredFiles {
		if _, err := os.Stat(filepath.Join(l.dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadFailure{Path: strings.Join(missing, ", "), Reason: "required input file(s) not found"}
	}

	facilities, err := l.loadFacilities()
	if err != nil {
		return nil, err
	}

	zips, err := l.loadZips()
	if err != nil {
		return nil, err
	}

	demand, err := l.loadDemand()
	if err != nil {
		return nil, err
	}

	injection, err := l.loadInjection()
	if err != nil {
		return nil, err
	}

	scenarios, err := l.loadScenarios()
	if err != nil {
		return nil, err
	}

	bands, err := l.loadMileageBands()
	if err != nil {
		return nil, err
	}

	timingParams, err := l.loadTimingParams()
	if err != nil {
		return nil, err
	}

	arcCPTs, err := l.loadArcCPTs(facilities)
	if err != nil {
		return nil, err
	}

	commitments, err := l.loadServiceCommitments()
	if err != nil {
		return nil, err
	}

	runSettings, err := l.loadRunSettings()
	if err != nil {
		return nil, err
	}

	return &Data{
		Facilities: facilities, Zips: zips, Demand: demand, Injection: injection,
		Scenarios: scenarios, MileageBands: bands, TimingParams: timingParams,
		ArcCPTs: arcCPTs, ServiceCommitments: commitments, RunSettings: runSettings,
	}, nil
}

func (l *Loader) path(name string) string { return filepath.Join(l.dir, name) }

type facilityRow struct {
	FacilityName             string `csv:"facility_name"`
	Type                     string `csv:"type"`
	Lat                      string `csv:"lat"`
	Lon                      string `csv:"lon"`
	Timezone                 string `csv:"timezone"`
	ParentHubName            string `csv:"parent_hub_name"`
	RegionalSortHub          string `csv:"regional_sort_hub"`
	IsInjectionNode          string `csv:"is_injection_node"`
	MMSortStartLocal         string `csv:"mm_sort_start_local"`
	MMSortEndLocal           string `csv:"mm_sort_end_local"`
	LMSortStartLocal         string `csv:"lm_sort_start_local"`
	LMSortEndLocal           string `csv:"lm_sort_end_local"`
	OutboundWindowStartLocal string `csv:"outbound_window_start_local"`
	OutboundWindowEndLocal   string `csv:"outbound_window_end_local"`
	OutboundCPTCount         string `csv:"outbound_cpt_count"`
	MaxInboundTrucksPerHour  string `csv:"max_inbound_trucks_per_hour"`
	MaxOutboundTrucksPerHour string `csv:"max_outbound_trucks_per_hour"`
}

func (l *Loader) loadFacilities() (map[string]model.Facility, error) {
	var rows []facilityRow
	if err := l.unmarshal("facilities.csv", &rows); err != nil {
		return nil, err
	}

	facilities := make(map[string]model.Facility, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.FacilityName)

		zone, err := timeutil.LoadZone(strings.TrimSpace(r.Timezone))
		if err != nil {
			return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s: %v", name, err)}
		}

		lat, err := parseFloat(r.Lat)
		if err != nil {
			return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s: bad lat: %v", name, err)}
		}
		lon, err := parseFloat(r.Lon)
		if err != nil {
			return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s: bad lon: %v", name, err)}
		}

		fac := model.Facility{
			Name: name, Type: model.FacilityType(strings.ToLower(strings.TrimSpace(r.Type))),
			Lat: lat, Lon: lon, Zone: zone,
			ParentHubName:   strings.TrimSpace(r.ParentHubName),
			RegionalSortHub: strings.TrimSpace(r.RegionalSortHub),
			IsInjectionNode: parseBool(r.IsInjectionNode),
		}

		mmStart, mmEnd := strings.TrimSpace(r.MMSortStartLocal), strings.TrimSpace(r.MMSortEndLocal)
		if mmStart != "" && mmEnd != "" {
			w, err := buildWindow(mmStart, mmEnd, zone)
			if err != nil {
				return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s mm_sort window: %v", name, err)}
			}
			fac.MMSortWindow = w
		}

		lmStart, lmEnd := strings.TrimSpace(r.LMSortStartLocal), strings.TrimSpace(r.LMSortEndLocal)
		if lmStart != "" && lmEnd != "" {
			w, err := buildWindow(lmStart, lmEnd, zone)
			if err != nil {
				return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s lm_sort window: %v", name, err)}
			}
			fac.LMSortWindow = w
		}

		obStart, obEnd := strings.TrimSpace(r.OutboundWindowStartLocal), strings.TrimSpace(r.OutboundWindowEndLocal)
		if obStart != "" && obEnd != "" {
			w, err := buildWindow(obStart, obEnd, zone)
			if err != nil {
				return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s outbound window: %v", name, err)}
			}
			fac.OutboundWindow = w
		}

		if s := strings.TrimSpace(r.OutboundCPTCount); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s outbound_cpt_count: %v", name, err)}
			}
			fac.OutboundCPTCount = &n
		}

		if v, ok, err := parseOptionalFloat(r.MaxInboundTrucksPerHour); err != nil {
			return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s: %v", name, err)}
		} else if ok {
			fac.MaxInboundTrucksPerHour = &v
		}
		if v, ok, err := parseOptionalFloat(r.MaxOutboundTrucksPerHour); err != nil {
			return nil, &SchemaFailure{Table: "facilities", Reason: fmt.Sprintf("facility %s: %v", name, err)}
		} else if ok {
			fac.MaxOutboundTrucksPerHour = &v
		}

		facilities[name] = fac
	}

	log.Printf("ingest: loaded %d facilities", len(facilities))
	return facilities, nil
}

func buildWindow(startStr, endStr string, zone *time.Location) (*model.SortWindow, error) {
	start, err := model.ParseClock(startStr)
	if err != nil {
		return nil, err
	}
	end, err := model.ParseClock(endStr)
	if err != nil {
		return nil, err
	}
	return &model.SortWindow{StartLocal: start, EndLocal: end, Zone: zone}, nil
}

type zipRow struct {
	Zip                  string `csv:"zip"`
	FacilityNameAssigned string `csv:"facility_name_assigned"`
	Population           string `csv:"population"`
}

func (l *Loader) loadZips() ([]model.ZipRow, error) {
	var rows []zipRow
	if err := l.unmarshal("zips.csv", &rows); err != nil {
		return nil, err
	}
	out := make([]model.ZipRow, 0, len(rows))
	for _, r := range rows {
		pop, err := parseFloat(r.Population)
		if err != nil {
			return nil, &SchemaFailure{Table: "zips", Reason: fmt.Sprintf("zip %s: bad population: %v", r.Zip, err)}
		}
		out = append(out, model.ZipRow{
			Zip:                  padZip(r.Zip),
			FacilityNameAssigned: strings.TrimSpace(r.FacilityNameAssigned),
			Population:           pop,
		})
	}
	log.Printf("ingest: loaded %d zip codes", len(out))
	return out, nil
}

func padZip(s string) string {
	s = strings.TrimSpace(s)
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

type demandRow struct {
	Year                        string `csv:"year"`
	AnnualPkgs                  string `csv:"annual_pkgs"`
	PeakPctOfAnnual             string `csv:"peak_pct_of_annual"`
	OffpeakPctOfAnnual          string `csv:"offpeak_pct_of_annual"`
	MiddleMileSharePeak         string `csv:"middle_mile_share_peak"`
	MiddleMileShareOffpeak      string `csv:"middle_mile_share_offpeak"`
	ZoneSkipSharePeak           string `csv:"zone_skip_share_peak"`
	ZoneSkipShareOffpeak        string `csv:"zone_skip_share_offpeak"`
	DirectInjectionSharePeak    string `csv:"direct_injection_share_peak"`
	DirectInjectionShareOffpeak string `csv:"direct_injection_share_offpeak"`
}

func (l *Loader) loadDemand() ([]model.DemandRow, error) {
	var rows []demandRow
	if err := l.unmarshal("demand.csv", &rows); err != nil {
		return nil, err
	}
	out := make([]model.DemandRow, 0, len(rows))
	for _, r := range rows {
		year, err := strconv.Atoi(strings.TrimSpace(r.Year))
		if err != nil {
			return nil, &SchemaFailure{Table: "demand", Reason: fmt.Sprintf("bad year: %v", err)}
		}
		fields := []string{
			r.AnnualPkgs, r.PeakPctOfAnnual, r.OffpeakPctOfAnnual,
			r.MiddleMileSharePeak, r.MiddleMileShareOffpeak,
			r.ZoneSkipSharePeak, r.ZoneSkipShareOffpeak,
			r.DirectInjectionSharePeak, r.DirectInjectionShareOffpeak,
		}
		parsed := make([]float64, len(fields))
		for i, f := range fields {
			v, err := parseFloat(f)
			if err != nil {
				return nil, &SchemaFailure{Table: "demand", Reason: fmt.Sprintf("year %d: %v", year, err)}
			}
			parsed[i] = v
		}
		out = append(out, model.DemandRow{
			Year: year, AnnualPkgs: parsed[0],
			PeakPctOfAnnual: parsed[1], OffpeakPctOfAnnual: parsed[2],
			MiddleMileSharePeak: parsed[3], MiddleMileShareOffpeak: parsed[4],
			ZoneSkipSharePeak: parsed[5], ZoneSkipShareOffpeak: parsed[6],
			DirectInjectionSharePeak: parsed[7], DirectInjectionShareOffpeak: parsed[8],
		})
	}
	log.Printf("ingest: loaded demand data for %d year(s)", len(out))
	return out, nil
}

type injectionRow struct {
	FacilityName  string `csv:"facility_name"`
	AbsoluteShare string `csv:"absolute_share"`
}

func (l *Loader) loadInjection() ([]model.InjectionRow, error) {
	var rows []injectionRow
	if err := l.unmarshal("injection_distribution.csv", &rows); err != nil {
		return nil, err
	}
	out := make([]model.InjectionRow, 0, len(rows))
	var total float64
	for _, r := range rows {
		share, err := parseFloat(r.AbsoluteShare)
		if err != nil {
			return nil, &SchemaFailure{Table: "injection_distribution", Reason: err.Error()}
		}
		total += share
		out = append(out, model.InjectionRow{FacilityName: strings.TrimSpace(r.FacilityName), AbsoluteShare: share})
	}
	if abs(total-1.0) > 0.01 {
		log.Printf("ingest: injection distribution shares sum to %.3f, expected 1.0", total)
	}
	log.Printf("ingest: loaded injection distribution for %d facilities", len(out))
	return out, nil
}

type scenarioRow struct {
	ScenarioID string `csv:"scenario_id"`
	Year       string `csv:"year"`
	DayType    string `csv:"day_type"`
}

func (l *Loader) loadScenarios() ([]model.ScenarioRow, error) {
	var rows []scenarioRow
	if err := l.unmarshal("scenarios.csv", &rows); err != nil {
		return nil, err
	}
	out := make([]model.ScenarioRow, 0, len(rows))
	for _, r := range rows {
		year, err := strconv.Atoi(strings.TrimSpace(r.Year))
		if err != nil {
			return nil, &SchemaFailure{Table: "scenarios", Reason: fmt.Sprintf("scenario %s: bad year: %v", r.ScenarioID, err)}
		}
		out = append(out, model.ScenarioRow{
			ScenarioID: strings.TrimSpace(r.ScenarioID), Year: year,
			DayType: strings.TrimSpace(r.DayType),
		})
	}
	log.Printf("ingest: loaded %d scenarios", len(out))
	return out, nil
}

type mileageBandRow struct {
	Zone           string `csv:"zone"`
	MileageBandMin string `csv:"mileage_band_min"`
	MileageBandMax string `csv:"mileage_band_max"`
	CircuityFactor string `csv:"circuity_factor"`
	MPH            string `csv:"mph"`
}

func (l *Loader) loadMileageBands() ([]model.MileageBand, error) {
	var rows []mileageBandRow
	if err := l.unmarshal("mileage_bands.csv", &rows); err != nil {
		return nil, err
	}
	out := make([]model.MileageBand, 0, len(rows))
	for _, r := range rows {
		zone, err := strconv.Atoi(strings.TrimSpace(r.Zone))
		if err != nil {
			return nil, &SchemaFailure{Table: "mileage_bands", Reason: err.Error()}
		}
		min, err := parseFloat(r.MileageBandMin)
		if err != nil {
			return nil, &SchemaFailure{Table: "mileage_bands", Reason: err.Error()}
		}
		max, err := parseFloat(r.MileageBandMax)
		if err != nil {
			return nil, &SchemaFailure{Table: "mileage_bands", Reason: err.Error()}
		}
		circuity, err := parseFloat(r.CircuityFactor)
		if err != nil {
			return nil, &SchemaFailure{Table: "mileage_bands", Reason: err.Error()}
		}
		mph, err := parseFloat(r.MPH)
		if err != nil {
			return nil, &SchemaFailure{Table: "mileage_bands", Reason: err.Error()}
		}
		out = append(out, model.MileageBand{Zone: zone, MilesMin: min, MilesMax: max, CircuityFactor: circuity, MPH: mph})
	}

	sortBandsByZone(out)
	log.Printf("ingest: loaded %d mileage bands", len(out))
	return out, nil
}

func sortBandsByZone(bands []model.MileageBand) {
	for i := 1; i < len(bands); i++ {
		for j := i; j > 0 && bands[j].Zone < bands[j-1].Zone; j-- {
			bands[j], bands[j-1] = bands[j-1], bands[j]
		}
	}
}

type timingParamRow struct {
	Key   string `csv:"key"`
	Value string `csv:"value"`
}

func (l *Loader) loadTimingParams() (model.TimingParams, error) {
	var rows []timingParamRow
	if err := l.unmarshal("timing_params.csv", &rows); err != nil {
		return model.TimingParams{}, err
	}

	values := make(map[string]float64, len(rows))
	for _, r := range rows {
		v, err := parseFloat(r.Value)
		if err != nil {
			return model.TimingParams{}, &SchemaFailure{Table: "timing_params", Reason: fmt.Sprintf("key %s: %v", r.Key, err)}
		}
		values[strings.TrimSpace(r.Key)] = v
	}

	required := []string{
		"induction_sort_minutes", "middle_mile_crossdock_minutes",
		"middle_mile_sort_minutes", "last_mile_sort_minutes",
	}
	var missing []string
	for _, k := range required {
		if _, ok := values[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return model.TimingParams{}, &SchemaFailure{Table: "timing_params", Reason: fmt.Sprintf("missing required keys: %v", missing)}
	}

	params := model.TimingParams{
		InductionSortMinutes:       values["induction_sort_minutes"],
		MiddleMileCrossdockMinutes: values["middle_mile_crossdock_minutes"],
		MiddleMileSortMinutes:      values["middle_mile_sort_minutes"],
		LastMileSortMinutes:        values["last_mile_sort_minutes"],
	}
	log.Printf("ingest: loaded timing params: %+v", params)
	return params, nil
}

type arcCPTRow struct {
	Origin       string `csv:"origin"`
	Dest         string `csv:"dest"`
	CPTSequence  string `csv:"cpt_sequence"`
	CPTLocal     string `csv:"cpt_local"`
	DaysOfWeek   string `csv:"days_of_week"`
	ActiveArc    string `csv:"active_arc"`
}

func (l *Loader) loadArcCPTs(facilities map[string]model.Facility) ([]model.CPT, error) {
	if _, err := os.Stat(l.path("arc_cpts.csv")); err != nil {
		log.Printf("ingest: no arc_cpts.csv found, will generate CPTs from facility outbound windows")
		return nil, nil
	}

	var rows []arcCPTRow
	if err := l.unmarshal("arc_cpts.csv", &rows); err != nil {
		return nil, err
	}

	out := make([]model.CPT, 0, len(rows))
	for _, r := range rows {
		origin := strings.TrimSpace(r.Origin)
		dest := strings.TrimSpace(r.Dest)

		fac, ok := facilities[origin]
		if !ok {
			return nil, &SchemaFailure{Table: "arc_cpts", Reason: fmt.Sprintf("references unknown origin facility: %s", origin)}
		}

		seq, err := strconv.Atoi(strings.TrimSpace(r.CPTSequence))
		if err != nil {
			return nil, &SchemaFailure{Table: "arc_cpts", Reason: err.Error()}
		}
		clock, err := model.ParseClock(strings.TrimSpace(r.CPTLocal))
		if err != nil {
			return nil, &SchemaFailure{Table: "arc_cpts", Reason: fmt.Sprintf("origin %s: %v", origin, err)}
		}
		days, err := timeutil.ParseDaysOfWeek(r.DaysOfWeek)
		if err != nil {
			return nil, &SchemaFailure{Table: "arc_cpts", Reason: err.Error()}
		}
		active := strings.TrimSpace(r.ActiveArc) == "1" || strings.EqualFold(strings.TrimSpace(r.ActiveArc), "true")

		out = append(out, model.CPT{
			Origin: origin, Dest: dest, Sequence: seq,
			LocalTime: clock, DaysOfWeek: days, Zone: fac.Zone, IsActive: active,
		})
	}
	log.Printf("ingest: loaded %d arc CPT overrides", len(out))
	return out, nil
}

type serviceCommitmentRow struct {
	Origin         string `csv:"origin"`
	Dest           string `csv:"dest"`
	Zone           string `csv:"zone"`
	SLADays        string `csv:"sla_days"`
	SLABufferDays  string `csv:"sla_buffer_days"`
	PriorityWeight string `csv:"priority_weight"`
}

func (l *Loader) loadServiceCommitments() ([]model.ServiceCommitment, error) {
	var rows []serviceCommitmentRow
	if err := l.unmarshal("service_commitments.csv", &rows); err != nil {
		return nil, err
	}

	out := make([]model.ServiceCommitment, 0, len(rows))
	for _, r := range rows {
		slaDays, err := strconv.Atoi(strings.TrimSpace(r.SLADays))
		if err != nil {
			return nil, &SchemaFailure{Table: "service_commitments", Reason: err.Error()}
		}

		bufferDays := 0.0
		if s := strings.TrimSpace(r.SLABufferDays); s != "" {
			bufferDays, err = parseFloat(s)
			if err != nil {
				return nil, &SchemaFailure{Table: "service_commitments", Reason: err.Error()}
			}
		}

		priorityWeight := 1.0
		if s := strings.TrimSpace(r.PriorityWeight); s != "" {
			priorityWeight, err = parseFloat(s)
			if err != nil {
				return nil, &SchemaFailure{Table: "service_commitments", Reason: err.Error()}
			}
		}

		var zonePtr *int
		if s := strings.TrimSpace(r.Zone); s != "" {
			z, err := strconv.Atoi(s)
			if err != nil {
				return nil, &SchemaFailure{Table: "service_commitments", Reason: err.Error()}
			}
			zonePtr = &z
		}

		out = append(out, model.ServiceCommitment{
			Origin: strings.TrimSpace(r.Origin), Dest: strings.TrimSpace(r.Dest),
			Zone: zonePtr, SLADays: slaDays, SLABufferDays: bufferDays,
			PriorityWeight: priorityWeight,
		})
	}
	log.Printf("ingest: loaded %d service commitments", len(out))
	return out, nil
}

type runSettingsRow struct {
	Key   string `csv:"key"`
	Value string `csv:"value"`
}

func (l *Loader) loadRunSettings() (model.RunSettings, error) {
	var rows []runSettingsRow
	if err := l.unmarshal("run_settings.csv", &rows); err != nil {
		return model.RunSettings{}, err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[strings.TrimSpace(r.Key)] = strings.TrimSpace(r.Value)
	}

	settings := model.RunSettings{
		ObjectiveType:          orDefault(values["objective_type"], "weighted_sla"),
		MaxPathTouches:         4,
		MaxPathATWFactor:       1.5,
		ReferenceInjectionDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		ReferenceInjectionTime: mustClock("18:00"),
	}

	if v, ok := values["max_path_touches"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.RunSettings{}, &SchemaFailure{Table: "run_settings", Reason: err.Error()}
		}
		settings.MaxPathTouches = n
	}
	if v, ok := values["max_path_atw_factor"]; ok && v != "" {
		f, err := parseFloat(v)
		if err != nil {
			return model.RunSettings{}, &SchemaFailure{Table: "run_settings", Reason: err.Error()}
		}
		settings.MaxPathATWFactor = f
	}
	if v, ok := values["reference_injection_date"]; ok && v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return model.RunSettings{}, &SchemaFailure{Table: "run_settings", Reason: fmt.Sprintf("reference_injection_date: %v", err)}
		}
		settings.ReferenceInjectionDate = d
	}
	if v, ok := values["reference_injection_time"]; ok && v != "" {
		c, err := model.ParseClock(v)
		if err != nil {
			return model.RunSettings{}, &SchemaFailure{Table: "run_settings", Reason: fmt.Sprintf("reference_injection_time: %v", err)}
		}
		settings.ReferenceInjectionTime = c
	}
	if v, ok := values["top_paths_per_sort_level"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.RunSettings{}, &SchemaFailure{Table: "run_settings", Reason: err.Error()}
		}
		settings.TopPathsPerSortLevel = &n
	}

	log.Printf("ingest: loaded run settings: %+v", settings)
	return settings, nil
}

func orDefault(v, dflt string) string {
	if v == "" {
		return dflt
	}
	return v
}

func mustClock(s string) model.Clock {
	c, _ := model.ParseClock(s)
	return c
}

func (l *Loader) unmarshal(name string, out interface{}) error {
	f, err := os.Open(l.path(name))
	if err != nil {
		return &LoadFailure{Path: name, Reason: "required input file not found"}
	}
	defer f.Close()

	if err := gocsv.Unmarshal(f, out); err != nil {
		return &SchemaFailure{Table: strings.TrimSuffix(name, ".csv"), Reason: err.Error()}
	}
	return nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseOptionalFloat(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := parseFloat(s)
	return v, true, err
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "t" || s == "yes"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
