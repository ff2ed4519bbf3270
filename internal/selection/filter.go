package selection

import (
	"cmp"
	"math"
	"slices"

	"github.com/HerbHall/drivermatch/pkg/models"
)

// DefaultMaxPercentageDiff bounds how far above the load a single unit may go.
const DefaultMaxPercentageDiff = 50.0

// FilterLocation returns the units eligible for the location filter.
// "both" or an empty filter returns the catalog unchanged.
func FilterLocation(units []models.DriverUnit, location string) []models.DriverUnit {
	if models.IsAnyLocation(location) {
		return units
	}
	out := make([]models.DriverUnit, 0, len(units))
	for i := range units {
		if units[i].MatchesLocation(location) {
			out = append(out, units[i])
		}
	}
	return out
}

// FilterNearby returns the units that alone cover requiredWattage at
// requiredVoltage with a percentage surplus of at most maxPercentageDiff,
// ordered by ascending surplus. Equal surpluses keep catalog order.
func FilterNearby(units []models.DriverUnit, requiredWattage float64, requiredVoltage int, maxPercentageDiff float64) []models.DriverUnit {
	out := make([]models.DriverUnit, 0)
	for i := range units {
		u := units[i]
		if u.Voltage != requiredVoltage || u.Wattage < requiredWattage {
			continue
		}
		if surplusPercent(u.Wattage, requiredWattage) <= maxPercentageDiff {
			out = append(out, u)
		}
	}
	slices.SortStableFunc(out, func(a, b models.DriverUnit) int {
		return cmp.Compare(a.Wattage-requiredWattage, b.Wattage-requiredWattage)
	})
	return out
}

// Nearest returns the covering unit with the smallest surplus. The first
// unit wins ties. ok is false when no unit covers the load.
func Nearest(units []models.DriverUnit, requiredWattage float64, requiredVoltage int) (nearest models.DriverUnit, ok bool) {
	best := math.Inf(1)
	for i := range units {
		u := units[i]
		if u.Voltage != requiredVoltage || u.Wattage < requiredWattage {
			continue
		}
		if d := u.Wattage - requiredWattage; d < best {
			best = d
			nearest = u
			ok = true
		}
	}
	return nearest, ok
}

// Hint is an informational closest-unit suggestion shown when nothing covers
// the load. Difference is signed: negative means the unit falls short.
type Hint struct {
	Unit       models.DriverUnit `json:"unit"`
	Difference float64           `json:"difference"`
}

// NearestBelow finds the unit at requiredVoltage whose wattage is closest to
// the load in either direction. Units with no wattage are ignored.
func NearestBelow(units []models.DriverUnit, requiredWattage float64, requiredVoltage int) (*Hint, bool) {
	var hint *Hint
	best := math.Inf(1)
	for i := range units {
		u := units[i]
		if u.Voltage != requiredVoltage || u.Wattage <= 0 {
			continue
		}
		if d := math.Abs(u.Wattage - requiredWattage); d < best {
			best = d
			hint = &Hint{Unit: u, Difference: u.Wattage - requiredWattage}
		}
	}
	return hint, hint != nil
}

// surplusPercent is the surplus as a percentage of the load. A non-positive
// load yields +Inf so that every threshold test fails.
func surplusPercent(wattage, required float64) float64 {
	if required <= 0 {
		return math.Inf(1)
	}
	return (wattage - required) / required * 100
}
