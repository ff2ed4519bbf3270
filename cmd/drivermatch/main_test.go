package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HerbHall/drivermatch/internal/catalog"
	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/pkg/models"
)

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"drivers.yaml": "drivers:\n  - {Name: A, Volt: 12, Watt: 60}\n",
		"drivers.csv":  "Name,Volt,Watt\nA,12,60\nB,24,100\n",
		"drivers.json": "[]",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	tests := []struct {
		file    string
		want    int
		wantErr bool
	}{
		{"drivers.yaml", 1, false},
		{"drivers.csv", 2, false},
		{"drivers.json", 0, true},
		{"missing.csv", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := readRecords(filepath.Join(dir, tt.file))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("readRecords() = %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPrintRecommendation(t *testing.T) {
	rec := &catalog.Recommendation{
		Wattage:          190,
		ConvertedLength:  19,
		Voltage:          12,
		RequiresMultiple: true,
		Options: []selection.DisplayOption{
			{Label: "Slim SMPS (100W) + Slim SMPS (100W)", UnitCount: 2, TotalWattage: 200, Surplus: 10, BestCombination: true},
		},
	}

	var buf bytes.Buffer
	printRecommendation(&buf, rec)
	out := buf.String()

	for _, want := range []string{"190W at 12V over 19m", "multiple drivers required", "[best combination]", "OPTION"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRecommendation_Hint(t *testing.T) {
	rec := &catalog.Recommendation{
		Wattage: 1200,
		Voltage: 12,
		NearestHint: &selection.Hint{
			Unit:       models.DriverUnit{Name: "Slim SMPS", Wattage: 400},
			Difference: -800,
		},
	}

	var buf bytes.Buffer
	printRecommendation(&buf, rec)
	if !strings.Contains(buf.String(), "Closest: Slim SMPS (400W, -800W)") {
		t.Errorf("output = %q, want the closest-unit hint", buf.String())
	}
}
