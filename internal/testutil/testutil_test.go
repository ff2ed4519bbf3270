package testutil

import (
	"context"
	"testing"
)

func TestLogger_NotNil(t *testing.T) {
	if Logger() == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestNewDriver_Defaults(t *testing.T) {
	d := NewDriver()
	if d.Voltage != 12 || d.Wattage != 100 {
		t.Errorf("defaults = %dV %vW, want 12V 100W", d.Voltage, d.Wattage)
	}
	if d.TypeKey != "slim smps" {
		t.Errorf("TypeKey = %q, want %q", d.TypeKey, "slim smps")
	}
}

func TestNewDriver_Options(t *testing.T) {
	d := NewDriver(WithName("Rain  Proof"), WithVoltage(24), WithWattage(250), WithPrice(0), WithLocation("Outdoor"))
	if d.Name != "Rain  Proof" || d.Voltage != 24 || d.Wattage != 250 || d.Price != 0 || d.Location != "Outdoor" {
		t.Errorf("options not applied: %+v", d)
	}
	if d.TypeKey != "rain proof" {
		t.Errorf("TypeKey = %q, want %q", d.TypeKey, "rain proof")
	}
}

func TestNewQuoteLine(t *testing.T) {
	l := NewQuoteLine("q1", WithLinePrice(1000, 10))
	if l.QuoteID != "q1" || l.Price != 1000 || l.DiscountPercent != 10 {
		t.Errorf("unexpected line: %+v", l)
	}
}
