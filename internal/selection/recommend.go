package selection

import (
	"errors"
	"fmt"

	"github.com/HerbHall/drivermatch/pkg/models"
)

// ErrInvalidParams is wrapped by Params.Validate for contract violations.
var ErrInvalidParams = errors.New("invalid selection parameters")

// Params are the tunables of a recommendation run.
type Params struct {
	TolerancePercent  float64     `mapstructure:"tolerance_percent"`
	MaxResults        int         `mapstructure:"max_results"`
	MaxPercentageDiff float64     `mapstructure:"max_percentage_diff"`
	MaxPool           int         `mapstructure:"max_pool"`
	Presets           PresetTable `mapstructure:"presets"`
}

// DefaultParams returns the parameters the presentation layer uses.
func DefaultParams() Params {
	return Params{
		TolerancePercent:  DefaultTolerancePercent,
		MaxResults:        5,
		MaxPercentageDiff: DefaultMaxPercentageDiff,
		Presets:           DefaultPresets(),
	}
}

// Validate checks the preconditions of a run.
func (p Params) Validate() error {
	switch {
	case p.TolerancePercent < 0:
		return fmt.Errorf("%w: tolerance_percent must not be negative", ErrInvalidParams)
	case p.MaxPercentageDiff < 0:
		return fmt.Errorf("%w: max_percentage_diff must not be negative", ErrInvalidParams)
	case p.MaxResults < 1:
		return fmt.Errorf("%w: max_results must be at least 1", ErrInvalidParams)
	case p.MaxPool < 0:
		return fmt.Errorf("%w: max_pool must not be negative", ErrInvalidParams)
	}
	for i, preset := range p.Presets {
		if preset.Wattage <= 0 {
			return fmt.Errorf("%w: preset %d: wattage must be positive", ErrInvalidParams, i)
		}
		if len(preset.Targets) == 0 {
			return fmt.Errorf("%w: preset %d: no targets", ErrInvalidParams, i)
		}
		for j, target := range preset.Targets {
			if len(target) == 0 {
				return fmt.Errorf("%w: preset %d target %d is empty", ErrInvalidParams, i, j)
			}
			for _, w := range target {
				if w <= 0 {
					return fmt.Errorf("%w: preset %d target %d: wattages must be positive", ErrInvalidParams, i, j)
				}
			}
		}
	}
	return nil
}

// Request is a load to cover.
type Request struct {
	RequiredWattage float64
	RequiredVoltage int
	Location        string
	// RequiresMultiple excludes single-unit options (long low-voltage runs).
	RequiresMultiple bool
	Params           Params
}

// Result is the outcome of Recommend.
type Result struct {
	Options         []DisplayOption    `json:"options"`
	Nearest         *models.DriverUnit `json:"nearest,omitempty"`
	NearestHint     *Hint              `json:"nearest_hint,omitempty"`
	SingleAvailable bool               `json:"single_available"`
}

// Recommend runs the full pipeline over a catalog snapshot: location filter,
// single-unit filter, combination search and option assembly. When nothing
// covers the load, NearestHint carries the closest unit for display only.
func Recommend(catalog []models.DriverUnit, req Request) (Result, error) {
	if err := req.Params.Validate(); err != nil {
		return Result{}, err
	}

	units := FilterLocation(catalog, req.Location)
	nearby := FilterNearby(units, req.RequiredWattage, req.RequiredVoltage, req.Params.MaxPercentageDiff)

	res := Result{SingleAvailable: len(nearby) > 0 && !req.RequiresMultiple}
	if n, ok := Nearest(nearby, req.RequiredWattage, req.RequiredVoltage); ok {
		res.Nearest = &n
	}

	combos := FindCombinations(units, SearchParams{
		RequiredWattage:  req.RequiredWattage,
		RequiredVoltage:  req.RequiredVoltage,
		Location:         req.Location,
		SingleAvailable:  res.SingleAvailable,
		MaxResults:       req.Params.MaxResults,
		TolerancePercent: req.Params.TolerancePercent,
		MaxPool:          req.Params.MaxPool,
		Presets:          req.Params.Presets,
	})

	res.Options = AssembleOptions(nearby, combos, req.RequiredWattage, req.RequiresMultiple)
	if len(res.Options) == 0 && req.RequiredWattage > 0 {
		res.NearestHint, _ = NearestBelow(units, req.RequiredWattage, req.RequiredVoltage)
	}
	return res, nil
}
