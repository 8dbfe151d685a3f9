package ingest

import (
	"strconv"
	"strings"
)

// LoadFailure is a missing input file or a missing required table within
// it. Load failures abort the run.
type LoadFailure struct {
	Path   string
	Reason string
}

func (e *LoadFailure) Error() string {
	return "ingest: load failure for " + e.Path + ": " + e.Reason
}

// SchemaFailure is a missing required column or an unparseable value
// (time, zone) within an otherwise-present table. Schema failures abort
// the run.
type SchemaFailure struct {
	Table  string
	Reason string
}

func (e *SchemaFailure) Error() string {
	return "ingest: schema failure in " + e.Table + ": " + e.Reason
}

// ValidationFailure batches every validation error found across all
// tables; Validate collects as many as possible before returning so the
// whole batch is reported at once instead of aborting on the first.
type ValidationFailure struct {
	Errors []string
}

func (e *ValidationFailure) Error() string {
	return "ingest: input validation failed with " + strconv.Itoa(len(e.Errors)) + " error(s):\n" + strings.Join(e.Errors, "\n")
}
