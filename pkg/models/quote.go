package models

import "time"

// LengthUnit is the unit a strip length was entered in.
type LengthUnit string

const (
	LengthMeter LengthUnit = "Meter"
	LengthFeet  LengthUnit = "Feet"
)

// QuoteLine is one row of a quotation: a chosen driver option for a strip run.
type QuoteLine struct {
	ID              string     `json:"id"`
	QuoteID         string     `json:"quote_id"`
	Position        int        `json:"position"`
	Brand           string     `json:"brand"`
	Length          float64    `json:"length"`
	LengthUnit      LengthUnit `json:"length_unit"`
	Voltage         int        `json:"voltage"`
	LEDCount        int        `json:"led_count"`
	Wattage         float64    `json:"wattage"`
	DriverLabel     string     `json:"driver"`
	Price           float64    `json:"price"`
	DiscountPercent float64    `json:"discount_percent"`
	CreatedAt       time.Time  `json:"created_at"`
}

// QuoteTotals summarizes the prices of a quotation.
type QuoteTotals struct {
	QuoteID  string  `json:"quote_id"`
	Lines    int     `json:"lines"`
	Gross    float64 `json:"gross"`
	Discount float64 `json:"discount"`
	Net      float64 `json:"net"`
}
