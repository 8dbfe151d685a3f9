package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cwr213/sla-path-model/driver"
)

// usage prints the run command's input/output contract.
func usage() {
	fmt.Fprintln(os.Stderr, "usage: sla-path-model run --input PATH --output PATH [--output-dir DIR] [--verbose]")
	flag.PrintDefaults()
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	input := fs.String("input", "", "input directory containing the run's CSV tables (required)")
	output := fs.String("output", "", "output file base name, used to derive the output directory when --output-dir is absent")
	outputDir := fs.String("output-dir", "", "directory to write report CSVs into (default: derived from --output, or from the run's scenario IDs)")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	fs.Usage = usage
	fs.Parse(os.Args[2:])

	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: --input is required")
		usage()
		os.Exit(1)
	}

	if !*verbose {
		log.SetFlags(0)
	}

	log.Println(strings.Repeat("=", 60))
	log.Println("SLA Path Model - Starting")
	log.Println(strings.Repeat("=", 60))

	start := time.Now()
	summary, err := driver.Run(context.Background(), driver.Options{
		InputDir:  *input,
		Output:    *output,
		OutputDir: *outputDir,
		Verbose:   *verbose,
	})
	if err != nil {
		log.Printf("sla-path-model: %v", err)
		os.Exit(1)
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("SLA Path Model - Complete (%.1fs)", time.Since(start).Seconds())
	log.Printf("Output written to: %s", summary.OutputDir)
	log.Printf("Scenarios: %v, OD pairs: %d, paths evaluated: %d",
		summary.ScenarioIDs, summary.TotalODPairs, summary.PathsEvaluated)
	log.Println(strings.Repeat("=", 60))

	os.Exit(0)
}
