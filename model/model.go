// Package model defines the data types shared by every stage of the
// path-timing pipeline: facilities, sort windows, CPTs, mileage bands,
// service commitments, run settings, demand rows, path candidates, and
// the step trace a TimingEngine produces for a path.
package model

import (
	"fmt"
	"time"
)

// FacilityType classifies a node in the sortation network.
type FacilityType string

const (
	Hub    FacilityType = "hub"
	Hybrid FacilityType = "hybrid"
	Launch FacilityType = "launch"
)

// SortLevel is the granularity at which a facility sorts a path.
type SortLevel string

const (
	SortRegion    SortLevel = "region"
	SortMarket    SortLevel = "market"
	SortSortGroup SortLevel = "sort_group"
)

// PathType tags a PathCandidate by its node-sequence length.
type PathType string

const (
	PathDirect    PathType = "direct"
	PathOneTouch  PathType = "one_touch"
	PathTwoTouch  PathType = "two_touch"
	PathThreeTouch PathType = "three_touch"
)

// PathTypeForTouches derives the PathType tag from an edge count
// (len(PathNodes)-1): 1 is direct, 2 one_touch, 3 two_touch. Four or more
// edges (five or more nodes) saturate at three_touch rather than growing
// an unbounded set of path-type tags.
func PathTypeForTouches(numTouches int) PathType {
	switch numTouches {
	case 1:
		return PathDirect
	case 2:
		return PathOneTouch
	case 3:
		return PathTwoTouch
	default:
		return PathThreeTouch
	}
}

// FlowType is the demand family an ODDemand row belongs to.
type FlowType string

const (
	DirectInjection FlowType = "direct_injection"
	ZoneSkip        FlowType = "zone_skip"
	MiddleMile      FlowType = "middle_mile"
)

// Clock is a minute-of-day value in [0, 1440).
type Clock int

// ParseClock parses an "HH:MM" or "HH:MM:SS" string into a Clock.
func ParseClock(s string) (Clock, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n < 2 {
		n, err = fmt.Sscanf(s, "%d:%d", &h, &m)
		if err != nil || n != 2 {
			return 0, fmt.Errorf("model: invalid time value %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("model: invalid time value %q", s)
	}
	return Clock(h*60 + m), nil
}

// String renders the Clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Minutes returns the minute-of-day value.
func (c Clock) Minutes() int { return int(c) }

// SortWindow is a (start_local, end_local, time-zone) daily recurring
// window.
type SortWindow struct {
	StartLocal Clock
	EndLocal   Clock
	Zone       *time.Location
}

// CrossesMidnight reports whether the window wraps past midnight.
func (w SortWindow) CrossesMidnight() bool {
	return w.EndLocal < w.StartLocal
}

// DurationMinutes is the window's span, accounting for midnight wraparound.
func (w SortWindow) DurationMinutes() float64 {
	if w.CrossesMidnight() {
		return float64(1440 - int(w.StartLocal) + int(w.EndLocal))
	}
	return float64(w.EndLocal - w.StartLocal)
}

// CPT is a scheduled trailer departure: origin facility, destination
// facility or wildcard "*", sequence index, local time-of-day, the
// origin's time zone, an optional day-of-week mask (empty = every day),
// and an active flag.
type CPT struct {
	Origin       string
	Dest         string
	Sequence     int
	LocalTime    Clock
	DaysOfWeek   []time.Weekday // empty = every day
	Zone         *time.Location
	IsActive     bool
}

// RunsOn reports whether the CPT's day-of-week mask allows day d.
func (c CPT) RunsOn(d time.Weekday) bool {
	if len(c.DaysOfWeek) == 0 {
		return true
	}
	for _, w := range c.DaysOfWeek {
		if w == d {
			return true
		}
	}
	return false
}

// MileageBand maps a zone integer to a [miles_min, miles_max) interval
// (upper bound inclusive for the last band) and the transit parameters
// that apply within it.
type MileageBand struct {
	Zone           int
	MilesMin       float64
	MilesMax       float64
	CircuityFactor float64
	MPH            float64
}

// ServiceCommitment is a priority-ordered SLA rule. Origin/Dest of "*"
// match any facility; Zone of nil matches any zone.
type ServiceCommitment struct {
	Origin         string
	Dest           string
	Zone           *int
	SLADays        int
	SLABufferDays  float64
	PriorityWeight float64
}

// TargetHours is the SLA deadline this commitment imposes.
func (c ServiceCommitment) TargetHours() float64 {
	return (float64(c.SLADays) + c.SLABufferDays) * 24.0
}

// Matches reports whether this commitment's origin/dest/zone selectors
// cover the given OD.
func (c ServiceCommitment) Matches(origin, dest string, zone int) bool {
	if c.Origin != "*" && c.Origin != origin {
		return false
	}
	if c.Dest != "*" && c.Dest != dest {
		return false
	}
	if c.Zone != nil && *c.Zone != zone {
		return false
	}
	return true
}

// TimingParams holds the fixed processing durations read from
// timing_params.csv.
type TimingParams struct {
	InductionSortMinutes       float64
	MiddleMileCrossdockMinutes float64
	MiddleMileSortMinutes      float64
	LastMileSortMinutes        float64
}

// RunSettings carries the per-run knobs read from run_settings.csv.
type RunSettings struct {
	ObjectiveType          string
	MaxPathTouches         int
	MaxPathATWFactor       float64
	ReferenceInjectionDate time.Time
	ReferenceInjectionTime Clock
	TopPathsPerSortLevel   *int
}

// ODKey identifies an origin-destination pair, used to group path
// candidates, timing results, and demand rows by OD across packages.
type ODKey struct {
	Origin string
	Dest   string
}

// ZipRow is one row of zips.csv: a ZIP's population, assigned to a
// delivery facility.
type ZipRow struct {
	Zip                   string
	FacilityNameAssigned  string
	Population            float64
}

// DemandRow is one row of demand.csv: a year's annual volume and its
// peak/offpeak flow-share split.
type DemandRow struct {
	Year       int
	AnnualPkgs float64
	// PeakPctOfAnnual and OffpeakPctOfAnnual are already daily rates: the
	// fraction of annual volume moving on one day of that type, so daily
	// packages = AnnualPkgs * PctOfAnnual with no division by day count.
	PeakPctOfAnnual             float64
	OffpeakPctOfAnnual          float64
	MiddleMileSharePeak         float64
	MiddleMileShareOffpeak      float64
	ZoneSkipSharePeak           float64
	ZoneSkipShareOffpeak        float64
	DirectInjectionSharePeak    float64
	DirectInjectionShareOffpeak float64
}

// InjectionRow is one row of injection_distribution.csv: a facility's
// share of middle-mile injection volume.
type InjectionRow struct {
	FacilityName  string
	AbsoluteShare float64
}

// ScenarioRow is one row of scenarios.csv: a year/day_type combination to
// build demand and run paths for.
type ScenarioRow struct {
	ScenarioID string
	Year       int
	DayType    string
}

// ODDemand is one row of origin-destination volume for a scenario/day_type.
type ODDemand struct {
	ScenarioID     string
	Origin         string
	Dest           string
	PackagesPerDay float64
	Zone           int
	FlowType       FlowType
	DayType        string
}

// PathCandidate is one physical-path + sort-level variant under
// consideration for an OD pair.
type PathCandidate struct {
	Origin        string
	Dest          string
	PathNodes     []string
	PathType      PathType
	SortLevel     SortLevel
	DestSortLevel SortLevel
	TotalPathMiles float64
	DirectMiles    float64
	ATWFactor      float64
}

// NumTouches is the number of edges in the path (len(PathNodes)-1).
func (p PathCandidate) NumTouches() int {
	return len(p.PathNodes) - 1
}

// IsDirect reports whether the path has no intermediate nodes.
func (p PathCandidate) IsDirect() bool {
	return p.NumTouches() == 1
}
