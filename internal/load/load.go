// Package load converts an LED strip run into the wattage a driver has to
// cover, and decides when a run is too long for a single driver.
package load

import (
	"errors"
	"fmt"
	"math"

	"github.com/HerbHall/drivermatch/pkg/models"
)

// FeetToMeters is the conversion factor applied to runs entered in feet.
const FeetToMeters = 0.3048

// ErrInvalidInput is returned for non-positive lengths or LED counts and
// unknown length units.
var ErrInvalidInput = errors.New("invalid load input")

// Input describes a strip run.
type Input struct {
	Length   float64           `json:"length"`
	LEDCount int               `json:"led_count"`
	Unit     models.LengthUnit `json:"unit"`
}

// Result is the calculated load.
type Result struct {
	Input
	// LengthMeters is Length converted to metres, rounded to 2 dp.
	LengthMeters float64 `json:"converted_length"`
	// Wattage is LengthMeters * LEDCount / 10, rounded to 2 dp.
	Wattage float64 `json:"wattage"`
}

// Validate checks the input ranges.
func (in Input) Validate() error {
	if in.Length <= 0 || math.IsNaN(in.Length) || math.IsInf(in.Length, 0) {
		return fmt.Errorf("%w: length must be positive", ErrInvalidInput)
	}
	if in.LEDCount <= 0 {
		return fmt.Errorf("%w: led_count must be positive", ErrInvalidInput)
	}
	switch in.Unit {
	case models.LengthMeter, models.LengthFeet:
	default:
		return fmt.Errorf("%w: unknown length unit %q", ErrInvalidInput, in.Unit)
	}
	return nil
}

// Calculate converts the run to metres and derives the wattage.
func Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	meters := in.Length
	if in.Unit == models.LengthFeet {
		meters = round2(in.Length * FeetToMeters)
	}
	return Result{
		Input:        in,
		LengthMeters: meters,
		Wattage:      round2(meters * float64(in.LEDCount) / 10),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
