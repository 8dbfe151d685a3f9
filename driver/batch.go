// Package driver wires together ingest, demand, pathenum, timing,
// feasibility, and report into a single end-to-end run.
package driver

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwr213/sla-path-model/cpt"
	"github.com/cwr213/sla-path-model/demand"
	"github.com/cwr213/sla-path-model/feasibility"
	"github.com/cwr213/sla-path-model/ingest"
	"github.com/cwr213/sla-path-model/model"
	"github.com/cwr213/sla-path-model/pathenum"
	"github.com/cwr213/sla-path-model/report"
	"github.com/cwr213/sla-path-model/timing"
)

// maxScenarioIDsInDirName bounds how many scenario IDs are joined when
// deriving an output directory name from the run's scenarios.
const maxScenarioIDsInDirName = 3

// Options configures a single Run. Output takes the raw --output CLI
// value (used only to derive a directory name); OutputDir, when set,
// wins outright over any derivation.
type Options struct {
	InputDir  string
	Output    string
	OutputDir string
	Verbose   bool
}

// Summary is the headline result of a Run, printed to the console and
// used by callers that want the numbers without re-parsing CSV output.
type Summary struct {
	ScenarioIDs    []string
	OutputDir      string
	TotalODPairs   int
	PathsEvaluated int
	Elapsed        time.Duration
}

// resolveOutputDir derives a run's output directory. --output-dir wins
// outright; otherwise the --output value with its extension stripped
// (any directory part is kept) is used;
// with neither given, the directory name is the run's scenario IDs
// joined by "_", truncated beyond maxScenarioIDsInDirName; with no
// scenarios at all, "output".
func resolveOutputDir(outputDir, output string, scenarioIDs []string) string {
	if outputDir != "" {
		return outputDir
	}
	if output != "" {
		ext := filepath.Ext(output)
		return strings.TrimSuffix(output, ext)
	}
	if len(scenarioIDs) == 0 {
		return "output"
	}
	ids := scenarioIDs
	if len(ids) > maxScenarioIDsInDirName {
		ids = ids[:maxScenarioIDsInDirName]
	}
	return strings.Join(ids, "_")
}

// Run executes the full load -> validate -> demand -> enumerate -> time
// -> feasibility -> report -> write pipeline.
func Run(ctx context.Context, opt Options) (Summary, error) {
	start := time.Now()

	log.Printf("driver: step 1/8 loading inputs from %s", opt.InputDir)
	loader := ingest.NewLoader(opt.InputDir)
	data, err := loader.LoadAll()
	if err != nil {
		return Summary{}, fmt.Errorf("driver: load: %w", err)
	}

	outputDir := resolveOutputDir(opt.OutputDir, opt.Output, scenarioIDsOf(data.Scenarios))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("driver: creating output directory %s: %w", outputDir, err)
	}

	log.Printf("driver: step 2/8 validating inputs")
	if err := ingest.Validate(data); err != nil {
		return Summary{}, fmt.Errorf("driver: validate: %w", err)
	}

	log.Printf("driver: step 3/8 building OD demand")
	demandBuilder := demand.NewBuilder(data.Facilities, data.Zips, data.Demand, data.Injection, data.Scenarios, data.MileageBands)
	demands, err := demandBuilder.BuildDemands()
	if err != nil {
		return Summary{}, fmt.Errorf("driver: build demand: %w", err)
	}
	if len(demands) == 0 {
		if len(data.Scenarios) == 0 {
			return Summary{}, fmt.Errorf("driver: no scenarios configured in scenarios.csv")
		}
		first := data.Scenarios[0]
		log.Printf("driver: no demand rows produced for any of %d scenario(s)", len(data.Scenarios))
		return Summary{}, &demand.NoDataForScenario{ScenarioID: first.ScenarioID, Year: first.Year}
	}

	log.Printf("driver: step 4/8 enumerating paths")
	enumerator := pathenum.New(data.Facilities, data.RunSettings)
	odZones := make(map[model.ODKey]int)
	odPairs := make(map[model.ODKey]bool)
	for _, d := range demands {
		key := model.ODKey{Origin: d.Origin, Dest: d.Dest}
		odPairs[key] = true
		odZones[key] = d.Zone
	}

	odPaths := make(map[model.ODKey][]model.PathCandidate, len(odPairs))
	for key := range odPairs {
		paths, err := enumerator.EnumeratePathsForOD(key.Origin, key.Dest)
		if err != nil {
			log.Printf("driver: path enumeration failed for %s->%s: %v (skipping OD pair)", key.Origin, key.Dest, err)
			continue
		}
		odPaths[key] = paths
	}

	log.Printf("driver: step 5/8 calculating path timings")
	cptTable := cpt.Build(data.Facilities, data.ArcCPTs)
	timingEngine := timing.NewEngine(data.Facilities, data.MileageBands, cptTable, data.TimingParams, data.RunSettings)

	odTimings := make(map[model.ODKey][]model.PathTimingResult, len(odPaths))
	var pathsEvaluated int
	for key, paths := range odPaths {
		for _, candidate := range paths {
			result, err := timingEngine.CalculatePathTiming(ctx, candidate)
			if err != nil {
				log.Printf("driver: timing failed for path %v: %v (skipping path)", candidate.PathNodes, err)
				continue
			}
			odTimings[key] = append(odTimings[key], result)
			pathsEvaluated++
		}
	}

	log.Printf("driver: step 6/8 checking SLA feasibility")
	feasibility.CheckAll(odTimings, odZones, data.ServiceCommitments)
	// Reports need every candidate's annotation, including the paths that
	// miss SLA (sla_miss_detail, pct_volume_missed) -- feasibility.FilterFeasible
	// is left for callers that only want the winning paths.

	log.Printf("driver: step 7/8 building reports")
	reportBuilder := report.NewBuilder(demands, odTimings, data.RunSettings.TopPathsPerSortLevel)

	log.Printf("driver: step 8/8 writing outputs to %s", outputDir)
	if err := reportBuilder.WriteAll(outputDir); err != nil {
		return Summary{}, fmt.Errorf("driver: write outputs: %w", err)
	}

	summary := Summary{
		ScenarioIDs:    scenarioIDsOf(data.Scenarios),
		OutputDir:      outputDir,
		TotalODPairs:   len(odPairs),
		PathsEvaluated: pathsEvaluated,
		Elapsed:        time.Since(start),
	}

	for _, row := range reportBuilder.BuildSummary() {
		log.Printf("driver:   scenario %s: packages=%.0f volume_at_sla=%.1f%% avg_tit=%.1fh",
			row.ScenarioID, row.TotalPackages, row.PctVolumeAtSLA*100, row.AvgTITHours)
	}

	return summary, nil
}

func scenarioIDsOf(rows []model.ScenarioRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ScenarioID)
	}
	return ids
}
