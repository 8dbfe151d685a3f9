package demand

import "fmt"

// NoDataForScenario is raised when a scenario references a year with no
// matching row in the demand table.
type NoDataForScenario struct {
	ScenarioID string
	Year       int
}

func (e *NoDataForScenario) Error() string {
	return fmt.Sprintf("demand: no demand data for scenario %s (year %d)", e.ScenarioID, e.Year)
}
