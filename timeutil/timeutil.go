// Package timeutil implements the TimeAlgebra component: local<->UTC
// conversion across named IANA zones, window-membership testing across
// midnight, and the forward/backward window-alignment primitives used by
// the timing engine and its diagnostics path.
package timeutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwr213/sla-path-model/model"
)

// LoadZone resolves an IANA zone name, the Go analogue of Python's
// zoneinfo.ZoneInfo(name).
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// LocalNaiveToUTC combines a calendar date with a Clock in the given
// zone and returns the equivalent UTC instant.
func LocalNaiveToUTC(date time.Time, clock model.Clock, zone *time.Location) time.Time {
	y, m, d := date.Date()
	local := time.Date(y, m, d, clock.Minutes()/60, clock.Minutes()%60, 0, 0, zone)
	return local.UTC()
}

// UTCToLocalNaive converts a UTC instant into the given zone and returns
// its calendar date (midnight, in zone) and time-of-day as a Clock.
func UTCToLocalNaive(t time.Time, zone *time.Location) (date time.Time, clock model.Clock) {
	local := t.In(zone)
	y, m, d := local.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, zone)
	clock = model.Clock(local.Hour()*60 + local.Minute())
	return date, clock
}

// IsTimeInWindow reports whether c falls inside w, honoring windows that
// cross midnight (inside means c >= start OR c < end).
func IsTimeInWindow(c model.Clock, w model.SortWindow) bool {
	if w.CrossesMidnight() {
		return c >= w.StartLocal || c < w.EndLocal
	}
	return c >= w.StartLocal && c < w.EndLocal
}

// AlignToWindowStart is the forward-chain aligner: if readyUTC (seen in
// w's local time) is already inside w, it returns (readyUTC, 0). Otherwise
// it returns the next instant the window opens, converted back to UTC,
// and the dwell minutes waited.
func AlignToWindowStart(readyUTC time.Time, w model.SortWindow, _ float64) (time.Time, float64) {
	local := readyUTC.In(w.Zone)
	localClock := model.Clock(local.Hour()*60 + local.Minute())

	if IsTimeInWindow(localClock, w) {
		return readyUTC, 0
	}

	y, m, d := local.Date()
	candidate := time.Date(y, m, d, w.StartLocal.Minutes()/60, w.StartLocal.Minutes()%60, 0, 0, w.Zone)
	if w.StartLocal <= localClock {
		// today's opening has already passed (or is exactly now, which
		// would have been "inside" already) -> next opening is tomorrow.
		candidate = candidate.AddDate(0, 0, 1)
	}

	startUTC := candidate.UTC()
	dwell := startUTC.Sub(readyUTC).Minutes()
	if dwell < 0 {
		dwell = 0
	}
	return startUTC, dwell
}

// AlignToWindowEnd is the backward-chain aligner, retained only for
// diagnostics since the timing engine itself is forward-chained. It
// finds the latest window-start at or before
// targetUTC-processingMinutes, clamping processingMinutes to the window
// duration when it overflows, and reports whether it clamped.
func AlignToWindowEnd(targetUTC time.Time, w model.SortWindow, processingMinutes float64) (actualEnd time.Time, dwellMinutes float64, clamped bool) {
	windowDur := w.DurationMinutes()
	effective := processingMinutes
	if effective > windowDur {
		effective = windowDur
		clamped = true
	}

	desiredStart := targetUTC.Add(-time.Duration(effective * float64(time.Minute)))
	localStart := desiredStart.In(w.Zone)

	y, m, d := localStart.Date()
	candidate := time.Date(y, m, d, w.StartLocal.Minutes()/60, w.StartLocal.Minutes()%60, 0, 0, w.Zone)
	if candidate.After(localStart) {
		candidate = candidate.AddDate(0, 0, -1)
	}

	actualEnd = candidate.Add(time.Duration(effective * float64(time.Minute))).UTC()
	dwellMinutes = targetUTC.Sub(actualEnd).Minutes()
	if dwellMinutes < 0 {
		dwellMinutes = 0
	}
	return actualEnd, dwellMinutes, clamped
}

// ParseTimeValue accepts the CSV-native shapes a timing_params/facilities/
// arc_cpts value can take: a model.Clock, an int minute-of-day, or a
// "H:M" / "H:M:S" string. An Excel fractional-day-float representation
// has no CSV analogue and is intentionally not supported here.
func ParseTimeValue(v any) (model.Clock, error) {
	switch t := v.(type) {
	case model.Clock:
		return t, nil
	case int:
		return model.Clock(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fmt.Errorf("timeutil: empty time value")
		}
		return model.ParseClock(s)
	default:
		return 0, fmt.Errorf("timeutil: unsupported time value type %T", v)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseDaysOfWeek parses a comma-separated day list (e.g. "Mon,Wed,Fri").
// An empty string means every day (nil, no mask).
func ParseDaysOfWeek(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		wd, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("timeutil: unknown weekday %q", p)
		}
		out = append(out, wd)
	}
	return out, nil
}
