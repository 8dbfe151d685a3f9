// Package report implements ReportBuilder: the path ranking key and the
// four output tables (summary, od_demand, feasible_paths,
// sla_miss_detail), written as CSV via gocsv.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/cwr213/sla-path-model/model"
)

// SummaryRow is one scenario's rollup.
type SummaryRow struct {
	ScenarioID      string  `csv:"scenario_id"`
	TotalODPairs    int     `csv:"total_od_pairs"`
	TotalPackages   float64 `csv:"total_packages"`
	PathsEvaluated  int     `csv:"paths_evaluated"`
	PathsFeasible   int     `csv:"paths_feasible"`
	PctVolumeAtSLA  float64 `csv:"pct_volume_at_sla"`
	PctVolumeMissed float64 `csv:"pct_volume_missed"`
	AvgTITHours     float64 `csv:"avg_tit_hours"`
}

// ODDemandRow mirrors an ODDemand, flattened for CSV output.
type ODDemandRow struct {
	ScenarioID     string  `csv:"scenario_id"`
	Origin         string  `csv:"origin"`
	Dest           string  `csv:"dest"`
	PackagesPerDay float64 `csv:"pkgs_day"`
	Zone           int     `csv:"zone"`
	FlowType       string  `csv:"flow_type"`
	DayType        string  `csv:"day_type"`
}

// FeasiblePathRow is one path candidate's full detail, one row per path.
type FeasiblePathRow struct {
	ScenarioID         string  `csv:"scenario_id"`
	Origin             string  `csv:"origin"`
	Dest               string  `csv:"dest"`
	Node1              string  `csv:"node_1"`
	Node2              string  `csv:"node_2"`
	Node3              string  `csv:"node_3"`
	Node4              string  `csv:"node_4"`
	Node5              string  `csv:"node_5"`
	PathType           string  `csv:"path_type"`
	SortLevel          string  `csv:"sort_level"`
	DestSortLevel      string  `csv:"dest_sort_level"`
	TotalPathMiles     float64 `csv:"total_path_miles"`
	DirectMiles        float64 `csv:"direct_miles"`
	ATWFactor          float64 `csv:"atw_factor"`
	TITHours           float64 `csv:"tit_hours"`
	SLADays            int     `csv:"sla_days"`
	SLATargetHours     float64 `csv:"sla_target_hours"`
	SLAMet             bool    `csv:"sla_met"`
	SLASlackHours      float64 `csv:"sla_slack_hours"`
	UsesOnlyActiveArcs bool    `csv:"uses_only_active_arcs"`
	PackagesPerDay     float64 `csv:"pkgs_day"`
	Zone               int     `csv:"zone"`
}

// SLAMissDetailRow is one OD pair whose best path still missed SLA.
type SLAMissDetailRow struct {
	ScenarioID   string  `csv:"scenario_id"`
	Origin       string  `csv:"origin"`
	Dest         string  `csv:"dest"`
	Zone         int     `csv:"zone"`
	PackagesDay  float64 `csv:"pkgs_day"`
	SLADays      int     `csv:"sla_days"`
	BestTITHours float64 `csv:"best_tit_hours"`
	MissHours    float64 `csv:"miss_hours"`
}

// Builder assembles the four report tables from a run's demand and
// timing results.
type Builder struct {
	demands              []model.ODDemand
	odTimings            map[model.ODKey][]model.PathTimingResult
	topPathsPerSortLevel *int
}

// NewBuilder constructs a Builder. topPathsPerSortLevel is run_settings.csv's
// optional top_paths_per_sort_level: when set, BuildFeasiblePaths keeps only
// the top N paths per (origin, dest, sort_level) group.
func NewBuilder(demands []model.ODDemand, odTimings map[model.ODKey][]model.PathTimingResult, topPathsPerSortLevel *int) *Builder {
	return &Builder{demands: demands, odTimings: odTimings, topPathsPerSortLevel: topPathsPerSortLevel}
}

// rankingKey is (tit_hours, num_touches, total_path_miles): lower is
// better.
func rankingKey(t model.PathTimingResult) (float64, int, float64) {
	return t.TITHours, t.NumTouches(), t.Path.TotalPathMiles
}

func keyLess(a, b model.PathTimingResult) bool {
	at, an, am := rankingKey(a)
	bt, bn, bm := rankingKey(b)
	if at != bt {
		return at < bt
	}
	if an != bn {
		return an < bn
	}
	return am < bm
}

func bestOf(timings []model.PathTimingResult) (model.PathTimingResult, bool) {
	if len(timings) == 0 {
		return model.PathTimingResult{}, false
	}
	best := timings[0]
	for _, t := range timings[1:] {
		if keyLess(t, best) {
			best = t
		}
	}
	return best, true
}

// pruneTopPaths keeps only the top topPathsPerSortLevel paths per
// sort-level group, sorted ascending by the ranking key (lower is
// better). A nil setting leaves timings untouched.
func (b *Builder) pruneTopPaths(timings []model.PathTimingResult) []model.PathTimingResult {
	if b.topPathsPerSortLevel == nil || len(timings) == 0 {
		return timings
	}
	n := *b.topPathsPerSortLevel
	if n <= 0 {
		return nil
	}

	var order []model.SortLevel
	groups := make(map[model.SortLevel][]model.PathTimingResult)
	for _, t := range timings {
		lvl := t.Path.SortLevel
		if _, ok := groups[lvl]; !ok {
			order = append(order, lvl)
		}
		groups[lvl] = append(groups[lvl], t)
	}

	pruned := make([]model.PathTimingResult, 0, len(timings))
	for _, lvl := range order {
		group := groups[lvl]
		sort.Slice(group, func(i, j int) bool { return keyLess(group[i], group[j]) })
		if len(group) > n {
			group = group[:n]
		}
		pruned = append(pruned, group...)
	}
	return pruned
}

func scenarioIDs(demands []model.ODDemand) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range demands {
		if !seen[d.ScenarioID] {
			seen[d.ScenarioID] = true
			ids = append(ids, d.ScenarioID)
		}
	}
	return ids
}

// BuildODDemand flattens every ODDemand row for output.
func (b *Builder) BuildODDemand() []ODDemandRow {
	rows := make([]ODDemandRow, 0, len(b.demands))
	for _, d := range b.demands {
		rows = append(rows, ODDemandRow{
			ScenarioID: d.ScenarioID, Origin: d.Origin, Dest: d.Dest,
			PackagesPerDay: d.PackagesPerDay, Zone: d.Zone,
			FlowType: string(d.FlowType), DayType: d.DayType,
		})
	}
	log.Printf("report: built od_demand with %d rows", len(rows))
	return rows
}

// BuildFeasiblePaths emits one row per candidate path, and a single
// synthetic row per direct-injection demand (always SLA-met, no path
// trace to show).
func (b *Builder) BuildFeasiblePaths() []FeasiblePathRow {
	var rows []FeasiblePathRow

	for _, d := range b.demands {
		if d.FlowType == model.DirectInjection {
			rows = append(rows, FeasiblePathRow{
				ScenarioID: d.ScenarioID, Origin: d.Origin, Dest: d.Dest,
				Node1: d.Dest, PathType: "direct_injection",
				SortLevel: "n/a", DestSortLevel: "n/a",
				ATWFactor: 1.0, SLAMet: true, UsesOnlyActiveArcs: true,
				PackagesPerDay: d.PackagesPerDay, Zone: d.Zone,
			})
			continue
		}

		timings := b.pruneTopPaths(b.odTimings[model.ODKey{Origin: d.Origin, Dest: d.Dest}])
		for _, t := range timings {
			nodes := t.Path.PathNodes
			row := FeasiblePathRow{
				ScenarioID: d.ScenarioID, Origin: t.Path.Origin, Dest: t.Path.Dest,
				PathType: string(t.Path.PathType), SortLevel: string(t.Path.SortLevel),
				DestSortLevel:      string(t.Path.DestSortLevel),
				TotalPathMiles:     round(t.Path.TotalPathMiles, 1),
				DirectMiles:        round(t.Path.DirectMiles, 1),
				ATWFactor:          round(t.Path.ATWFactor, 3),
				TITHours:           round(t.TITHours, 2),
				SLADays:            t.SLADays,
				SLATargetHours:     round(t.SLATargetHours, 2),
				SLAMet:             t.SLAMet,
				SLASlackHours:      round(t.SLASlackHours, 2),
				UsesOnlyActiveArcs: t.UsesOnlyActiveArcs,
				PackagesPerDay:     d.PackagesPerDay,
				Zone:               d.Zone,
			}
			nodeFields := []*string{&row.Node1, &row.Node2, &row.Node3, &row.Node4, &row.Node5}
			for i, field := range nodeFields {
				if i < len(nodes) {
					*field = nodes[i]
				}
			}
			rows = append(rows, row)
		}
	}

	log.Printf("report: built feasible_paths with %d rows", len(rows))
	return rows
}

// BuildSummary rolls demand and feasibility up per scenario.
func (b *Builder) BuildSummary() []SummaryRow {
	var rows []SummaryRow

	for _, scenarioID := range scenarioIDs(b.demands) {
		var scenarioDemands []model.ODDemand
		for _, d := range b.demands {
			if d.ScenarioID == scenarioID {
				scenarioDemands = append(scenarioDemands, d)
			}
		}

		var totalPackages, volumeAtSLA, volumeMissed, titSum float64
		var pathsEvaluated, pathsFeasible, titCount int

		for _, d := range scenarioDemands {
			totalPackages += d.PackagesPerDay

			if d.FlowType == model.DirectInjection {
				volumeAtSLA += d.PackagesPerDay
				continue
			}

			timings := b.odTimings[model.ODKey{Origin: d.Origin, Dest: d.Dest}]
			pathsEvaluated += len(timings)

			var feasible []model.PathTimingResult
			for _, t := range timings {
				if t.SLAMet {
					feasible = append(feasible, t)
				}
			}
			pathsFeasible += len(feasible)

			if len(feasible) > 0 {
				volumeAtSLA += d.PackagesPerDay
				best, _ := bestOf(feasible)
				titSum += best.TITHours
				titCount++
			} else if len(timings) > 0 {
				volumeMissed += d.PackagesPerDay
				best, _ := bestOf(timings)
				titSum += best.TITHours
				titCount++
			}
		}

		row := SummaryRow{
			ScenarioID: scenarioID, TotalODPairs: len(scenarioDemands),
			TotalPackages: round(totalPackages, 0), PathsEvaluated: pathsEvaluated,
			PathsFeasible: pathsFeasible,
		}
		if totalPackages > 0 {
			row.PctVolumeAtSLA = round(volumeAtSLA/totalPackages, 4)
			row.PctVolumeMissed = round(volumeMissed/totalPackages, 4)
		}
		if titCount > 0 {
			row.AvgTITHours = round(titSum/float64(titCount), 2)
		}
		rows = append(rows, row)
	}

	log.Printf("report: built summary with %d rows", len(rows))
	return rows
}

// BuildSLAMissDetail emits one row per OD pair whose best path still
// missed SLA.
func (b *Builder) BuildSLAMissDetail() []SLAMissDetailRow {
	var rows []SLAMissDetailRow

	for _, scenarioID := range scenarioIDs(b.demands) {
		for _, d := range b.demands {
			if d.ScenarioID != scenarioID || d.FlowType == model.DirectInjection {
				continue
			}

			timings := b.odTimings[model.ODKey{Origin: d.Origin, Dest: d.Dest}]
			best, ok := bestOf(timings)
			if !ok || best.SLAMet {
				continue
			}

			rows = append(rows, SLAMissDetailRow{
				ScenarioID: scenarioID, Origin: d.Origin, Dest: d.Dest,
				Zone: d.Zone, PackagesDay: round(d.PackagesPerDay, 0),
				SLADays: best.SLADays, BestTITHours: round(best.TITHours, 2),
				MissHours: round(-best.SLASlackHours, 2),
			})
		}
	}

	log.Printf("report: built sla_miss_detail with %d rows", len(rows))
	return rows
}

func round(v float64, places int) float64 {
	mult := 1.0
	for i := 0; i < places; i++ {
		mult *= 10
	}
	return float64(int64(v*mult+sign(v)*0.5)) / mult
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// WriteAll writes every table to its own CSV file under outputDir.
func (b *Builder) WriteAll(outputDir string) error {
	tables := []struct {
		name string
		data interface{}
	}{
		{"summary", b.BuildSummary()},
		{"od_demand", b.BuildODDemand()},
		{"feasible_paths", b.BuildFeasiblePaths()},
		{"sla_miss_detail", b.BuildSLAMissDetail()},
	}

	for _, tbl := range tables {
		path := filepath.Join(outputDir, tbl.name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("report: creating %s: %w", path, err)
		}
		err = gocsv.MarshalFile(tbl.data, f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("report: writing %s: %w", tbl.name, err)
		}
		if closeErr != nil {
			return fmt.Errorf("report: closing %s: %w", path, closeErr)
		}
		log.Printf("report: wrote %s", path)
	}
	return nil
}
