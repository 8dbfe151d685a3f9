package model

import "time"

// Facility is a node in the sortation network, identified by Name.
// ParentHubName and RegionalSortHub are lookup-only back-references by
// name, not ownership links — callers resolve them against the facility
// map built by the ingest package. Invariants are checked by the ingest
// package's validator, not by this type; a missing middle-mile or
// last-mile sort window is reported there as a warning only.
type Facility struct {
	Name            string
	Type            FacilityType
	Lat             float64
	Lon             float64
	Zone            *time.Location
	ParentHubName   string // "" if absent
	RegionalSortHub string // "" if absent
	IsInjectionNode bool

	MMSortWindow     *SortWindow
	LMSortWindow     *SortWindow
	OutboundWindow   *SortWindow
	OutboundCPTCount *int

	MaxInboundTrucksPerHour  *float64
	MaxOutboundTrucksPerHour *float64
}

// GetMMSortWindow returns the facility's middle-mile sort window, or nil.
func (f Facility) GetMMSortWindow() *SortWindow { return f.MMSortWindow }

// GetLMSortWindow returns the facility's last-mile sort window, or nil.
func (f Facility) GetLMSortWindow() *SortWindow { return f.LMSortWindow }

// GetOutboundWindow returns the facility's CPT-generation window, or nil.
func (f Facility) GetOutboundWindow() *SortWindow { return f.OutboundWindow }

// IsSortingFacility reports whether this facility can host an
// intermediate touch in a path (HUB or HYBRID).
func (f Facility) IsSortingFacility() bool {
	return f.Type == Hub || f.Type == Hybrid
}

// IsDeliveryFacility reports whether this facility can be a path
// destination (LAUNCH or HYBRID).
func (f Facility) IsDeliveryFacility() bool {
	return f.Type == Launch || f.Type == Hybrid
}
