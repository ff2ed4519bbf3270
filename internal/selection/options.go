package selection

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/HerbHall/drivermatch/pkg/models"
)

// OptionKind distinguishes single-unit options from combinations.
type OptionKind string

const (
	KindSingle      OptionKind = "single"
	KindCombination OptionKind = "combination"
)

// DisplayOption is one row of the recommendation list handed to the
// presentation layer.
type DisplayOption struct {
	Kind         OptionKind          `json:"kind"`
	UnitCount    int                 `json:"unit_count"`
	Label        string              `json:"label"`
	Units        []models.DriverUnit `json:"units"`
	TotalWattage float64             `json:"total_wattage"`
	Voltage      int                 `json:"voltage"`
	TotalCurrent float64             `json:"total_current"`
	TotalPrice   float64             `json:"total_price"`
	Surplus      float64             `json:"surplus"`
	Priority     bool                `json:"priority,omitempty"`
	// BestSingle marks the single unit with the smallest surplus.
	BestSingle bool `json:"best_single,omitempty"`
	// BestCombination marks the top-ranked combination.
	BestCombination bool `json:"best_combination,omitempty"`
}

// AssembleOptions merges single units and ranked combinations into one list
// ordered by surplus. When requiresMultiple is set, single units are left out
// entirely. Combinations must already be ranked: the first one is marked best.
func AssembleOptions(singles []models.DriverUnit, combos []Candidate, requiredWattage float64, requiresMultiple bool) []DisplayOption {
	out := make([]DisplayOption, 0, len(singles)+len(combos))

	if !requiresMultiple {
		best := bestSingleIndex(singles, requiredWattage)
		for i := range singles {
			opt := singleOption(singles[i], requiredWattage)
			opt.BestSingle = i == best
			out = append(out, opt)
		}
	}

	for i := range combos {
		opt := combinationOption(combos[i])
		opt.BestCombination = i == 0
		out = append(out, opt)
	}

	slices.SortStableFunc(out, func(a, b DisplayOption) int {
		return cmp.Compare(a.Surplus, b.Surplus)
	})
	return out
}

func bestSingleIndex(singles []models.DriverUnit, requiredWattage float64) int {
	best := -1
	for i := range singles {
		if best < 0 || singles[i].Wattage-requiredWattage < singles[best].Wattage-requiredWattage {
			best = i
		}
	}
	return best
}

func singleOption(u models.DriverUnit, requiredWattage float64) DisplayOption {
	return DisplayOption{
		Kind:         KindSingle,
		UnitCount:    1,
		Label:        unitLabel(u),
		Units:        []models.DriverUnit{u},
		TotalWattage: u.Wattage,
		Voltage:      u.Voltage,
		TotalCurrent: u.Current,
		TotalPrice:   u.Price,
		Surplus:      u.Wattage - requiredWattage,
	}
}

func combinationOption(c Candidate) DisplayOption {
	opt := DisplayOption{
		Kind:         KindCombination,
		UnitCount:    len(c.Units),
		Units:        c.Units,
		TotalWattage: c.TotalWattage,
		Surplus:      c.Surplus,
		Priority:     c.Priority,
	}
	parts := make([]string, 0, len(c.Units))
	for i, u := range c.Units {
		if i == 0 {
			opt.Voltage = u.Voltage
		}
		parts = append(parts, unitLabel(u))
		opt.TotalCurrent += u.Current
		opt.TotalPrice += u.Price
	}
	opt.Label = strings.Join(parts, " + ")
	return opt
}

// unitLabel renders "Name (100W)", using "-" for unnamed units.
func unitLabel(u models.DriverUnit) string {
	name := u.Name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s (%sW)", name, strconv.FormatFloat(u.Wattage, 'f', -1, 64))
}
