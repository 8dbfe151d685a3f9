package timeutil

import (
	"testing"
	"time"

	"github.com/cwr213/sla-path-model/model"
	"github.com/stretchr/testify/require"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadZone(name)
	require.NoError(t, err)
	return loc
}

func TestRoundTripLocalUTC(t *testing.T) {
	zone := mustZone(t, "America/New_York")
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, zone)
	clock := model.Clock(18 * 60)

	utc := LocalNaiveToUTC(date, clock, zone)
	gotDate, gotClock := UTCToLocalNaive(utc, zone)

	require.Equal(t, clock, gotClock)
	require.True(t, gotDate.Equal(date))
}

func TestIsTimeInWindowMidnightCrossing(t *testing.T) {
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(6 * 60)}
	require.True(t, w.CrossesMidnight())
	require.True(t, IsTimeInWindow(model.Clock(23*60), w))
	require.True(t, IsTimeInWindow(model.Clock(1*60), w))
	require.False(t, IsTimeInWindow(model.Clock(12*60), w))
}

func TestDurationMinutesEqualAcrossMidnight(t *testing.T) {
	nonCrossing := model.SortWindow{StartLocal: model.Clock(8 * 60), EndLocal: model.Clock(14 * 60)}
	crossing := model.SortWindow{StartLocal: model.Clock(20 * 60), EndLocal: model.Clock(2 * 60)}
	require.Equal(t, 360.0, nonCrossing.DurationMinutes())
	require.Equal(t, 360.0, crossing.DurationMinutes())
}

func TestAlignToWindowStartInsideWindow(t *testing.T) {
	zone := mustZone(t, "UTC")
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(6 * 60), Zone: zone}
	ready := time.Date(2025, 6, 15, 20, 0, 0, 0, zone)

	start, dwell := AlignToWindowStart(ready, w, 60)
	require.True(t, start.Equal(ready))
	require.Equal(t, 0.0, dwell)
}

func TestAlignToWindowStartOutsideWindow(t *testing.T) {
	zone := mustZone(t, "UTC")
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(6 * 60), Zone: zone}
	ready := time.Date(2025, 6, 15, 12, 0, 0, 0, zone)

	start, dwell := AlignToWindowStart(ready, w, 60)
	want := time.Date(2025, 6, 15, 18, 0, 0, 0, zone)
	require.True(t, start.Equal(want))
	require.Equal(t, 360.0, dwell)
}

func TestAlignToWindowEndClamps(t *testing.T) {
	zone := mustZone(t, "UTC")
	w := model.SortWindow{StartLocal: model.Clock(18 * 60), EndLocal: model.Clock(20 * 60), Zone: zone}
	target := time.Date(2025, 6, 15, 21, 0, 0, 0, zone)

	_, _, clamped := AlignToWindowEnd(target, w, 300) // window is only 120 min
	require.True(t, clamped)
}

func TestParseTimeValue(t *testing.T) {
	got, err := ParseTimeValue("18:00")
	require.NoError(t, err)
	require.Equal(t, model.Clock(18*60), got)

	got2, err := ParseTimeValue(90)
	require.NoError(t, err)
	require.Equal(t, model.Clock(90), got2)

	_, err = ParseTimeValue(3.14)
	require.Error(t, err)
}

func TestParseDaysOfWeek(t *testing.T) {
	days, err := ParseDaysOfWeek("Mon,Wed,Fri")
	require.NoError(t, err)
	require.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, days)

	empty, err := ParseDaysOfWeek("")
	require.NoError(t, err)
	require.Nil(t, empty)
}
