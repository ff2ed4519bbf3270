package testutil

import (
	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/pkg/models"
)

// NewDriver returns a 12 V, 100 W indoor driver suitable for test fixtures.
// Override individual fields with options.
func NewDriver(opts ...func(*models.DriverUnit)) models.DriverUnit {
	d := models.DriverUnit{
		Name:     "Slim SMPS",
		Voltage:  12,
		Wattage:  100,
		Current:  8.3,
		Price:    450,
		Location: "Indoor",
	}
	for _, opt := range opts {
		opt(&d)
	}
	d.TypeKey = selection.TypeKey(d.Name)
	return d
}

// WithName sets the driver name.
func WithName(name string) func(*models.DriverUnit) {
	return func(d *models.DriverUnit) { d.Name = name }
}

// WithVoltage sets the driver output voltage.
func WithVoltage(v int) func(*models.DriverUnit) {
	return func(d *models.DriverUnit) { d.Voltage = v }
}

// WithWattage sets the rated wattage.
func WithWattage(w float64) func(*models.DriverUnit) {
	return func(d *models.DriverUnit) { d.Wattage = w }
}

// WithPrice sets the unit price.
func WithPrice(p float64) func(*models.DriverUnit) {
	return func(d *models.DriverUnit) { d.Price = p }
}

// WithLocation sets the installation location tag.
func WithLocation(loc string) func(*models.DriverUnit) {
	return func(d *models.DriverUnit) { d.Location = loc }
}

// NewQuoteLine returns a quotation line for quoteID with sensible defaults.
func NewQuoteLine(quoteID string, opts ...func(*models.QuoteLine)) models.QuoteLine {
	l := models.QuoteLine{
		QuoteID:     quoteID,
		Brand:       "Lumen",
		Length:      5,
		LengthUnit:  models.LengthMeter,
		Voltage:     12,
		LEDCount:    120,
		Wattage:     60,
		DriverLabel: "Slim SMPS (100W)",
		Price:       450,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// WithLinePrice sets the line price and discount percentage.
func WithLinePrice(price, discount float64) func(*models.QuoteLine) {
	return func(l *models.QuoteLine) {
		l.Price = price
		l.DiscountPercent = discount
	}
}
