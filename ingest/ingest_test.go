package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func validInputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "facilities.csv",
		"facility_name,type,lat,lon,timezone,parent_hub_name,regional_sort_hub,is_injection_node,mm_sort_start_local,mm_sort_end_local,lm_sort_start_local,lm_sort_end_local,outbound_window_start_local,outbound_window_end_local,outbound_cpt_count,max_inbound_trucks_per_hour,max_outbound_trucks_per_hour\n"+
			"HUB1,hub,40.0,-75.0,America/New_York,,,true,02:00,05:00,,,06:00,10:00,2,,\n"+
			"LAUNCH1,launch,41.0,-76.0,America/New_York,HUB1,HUB1,false,,,06:00,09:00,,,,,\n")
	writeFile(t, dir, "zips.csv",
		"zip,facility_name_assigned,population\n10001,LAUNCH1,5000\n")
	writeFile(t, dir, "demand.csv",
		"year,annual_pkgs,peak_pct_of_annual,offpeak_pct_of_annual,middle_mile_share_peak,middle_mile_share_offpeak,zone_skip_share_peak,zone_skip_share_offpeak,direct_injection_share_peak,direct_injection_share_offpeak\n"+
			"2026,3650000,0.01,0.005,0.5,0.5,0.3,0.3,0.2,0.2\n")
	writeFile(t, dir, "injection_distribution.csv",
		"facility_name,absolute_share\nHUB1,1.0\n")
	writeFile(t, dir, "scenarios.csv",
		"scenario_id,year,day_type\nS1,2026,peak\n")
	writeFile(t, dir, "mileage_bands.csv",
		"zone,mileage_band_min,mileage_band_max,circuity_factor,mph\n"+
			"1,0,500,1.1,55\n2,500,5000,1.15,55\n")
	writeFile(t, dir, "timing_params.csv",
		"key,value\ninduction_sort_minutes,30\nmiddle_mile_crossdock_minutes,45\nmiddle_mile_sort_minutes,60\nlast_mile_sort_minutes,30\n")
	writeFile(t, dir, "service_commitments.csv",
		"origin,dest,zone,sla_days,sla_buffer_days,priority_weight\nHUB1,LAUNCH1,,2,0,1.0\n")
	writeFile(t, dir, "run_settings.csv",
		"key,value\nobjective_type,weighted_sla\nmax_path_touches,4\nmax_path_atw_factor,1.5\n")

	return dir
}

func TestLoadAllMissingDirectory(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := l.LoadAll()
	require.Error(t, err)
	var lf *LoadFailure
	require.ErrorAs(t, err, &lf)
}

func TestLoadAllMissingRequiredFile(t *testing.T) {
	dir := validInputDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "scenarios.csv")))

	l := NewLoader(dir)
	_, err := l.LoadAll()
	require.Error(t, err)
	var lf *LoadFailure
	require.ErrorAs(t, err, &lf)
}

func TestLoadAllHappyPath(t *testing.T) {
	dir := validInputDir(t)

	l := NewLoader(dir)
	data, err := l.LoadAll()
	require.NoError(t, err)

	require.Len(t, data.Facilities, 2)
	require.Contains(t, data.Facilities, "HUB1")
	require.Equal(t, 30.0, data.TimingParams.InductionSortMinutes)
	require.Equal(t, "weighted_sla", data.RunSettings.ObjectiveType)
	require.Equal(t, 4, data.RunSettings.MaxPathTouches)
	require.Len(t, data.ServiceCommitments, 1)
	require.Nil(t, data.ArcCPTs)
}

func TestLoadAllBadFacilityTimezoneIsSchemaFailure(t *testing.T) {
	dir := validInputDir(t)
	writeFile(t, dir, "facilities.csv",
		"facility_name,type,lat,lon,timezone,parent_hub_name,regional_sort_hub,is_injection_node,mm_sort_start_local,mm_sort_end_local,lm_sort_start_local,lm_sort_end_local,outbound_window_start_local,outbound_window_end_local,outbound_cpt_count,max_inbound_trucks_per_hour,max_outbound_trucks_per_hour\n"+
			"HUB1,hub,40.0,-75.0,Not/AZone,,,true,,,,,,,,,\n")

	l := NewLoader(dir)
	_, err := l.LoadAll()
	require.Error(t, err)
	var sf *SchemaFailure
	require.ErrorAs(t, err, &sf)
}

func TestLoadAllRunSettingsDefaults(t *testing.T) {
	dir := validInputDir(t)
	writeFile(t, dir, "run_settings.csv", "key,value\nobjective_type,weighted_sla\n")

	l := NewLoader(dir)
	data, err := l.LoadAll()
	require.NoError(t, err)
	require.Equal(t, 4, data.RunSettings.MaxPathTouches)
	require.InDelta(t, 1.5, data.RunSettings.MaxPathATWFactor, 0.0001)
}

func TestLoadAllReadsArcCPTsWhenPresent(t *testing.T) {
	dir := validInputDir(t)
	writeFile(t, dir, "arc_cpts.csv",
		"origin,dest,cpt_sequence,cpt_local,days_of_week,active_arc\nHUB1,LAUNCH1,1,08:00,,1\n")

	l := NewLoader(dir)
	data, err := l.LoadAll()
	require.NoError(t, err)
	require.Len(t, data.ArcCPTs, 1)
	require.True(t, data.ArcCPTs[0].IsActive)
}
