package models

import "strings"

// LocationBoth disables location filtering.
const LocationBoth = "both"

// Common installation location tags. Catalogs may carry any free-form tag;
// these are the ones the seed catalog uses.
const (
	LocationIndoor  = "indoor"
	LocationOutdoor = "outdoor"
)

// DriverUnit is a normalized power-supply catalog entry.
// Absent numeric fields are zero. An empty TypeKey means the record had no
// name and belongs to no product family.
type DriverUnit struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Voltage  int     `json:"voltage"`
	Wattage  float64 `json:"wattage"`
	Current  float64 `json:"current"`
	Price    float64 `json:"price"`
	Location string  `json:"location,omitempty"`
	TypeKey  string  `json:"type_key,omitempty"`
}

// MatchesLocation reports whether the unit is eligible for the given location
// filter. "both" and the empty filter match every unit.
func (d DriverUnit) MatchesLocation(filter string) bool {
	if IsAnyLocation(filter) {
		return true
	}
	return strings.EqualFold(d.Location, filter)
}

// IsAnyLocation reports whether filter disables location matching.
func IsAnyLocation(filter string) bool {
	return filter == "" || strings.EqualFold(filter, LocationBoth)
}
