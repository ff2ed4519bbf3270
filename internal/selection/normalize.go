// Package selection implements the driver recommendation engine: it turns a
// catalog snapshot and a required load into ranked single-driver and
// multi-driver options. Everything in this package is a pure function over
// its inputs; callers own fetching and caching the catalog.
package selection

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/HerbHall/drivermatch/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is a raw catalog entry as delivered by a provider. Key casing and
// naming vary between sources ("Watt" vs "watt", "Place" vs "location").
type Record map[string]any

// Field aliases in lookup order. The first alias holding a non-empty,
// non-zero value wins.
var (
	idKeys       = []string{"id", "Id", "ID"}
	nameKeys     = []string{"Name", "name"}
	voltKeys     = []string{"Volt", "volt", "Voltage", "voltage"}
	wattKeys     = []string{"Watt", "watt", "Wattage", "wattage"}
	ampKeys      = []string{"Amp", "amp", "Current", "current", "Ampere"}
	priceKeys    = []string{"Price", "price"}
	locationKeys = []string{"Place", "place", "Location", "location"}
)

// Normalize extracts a DriverUnit from a raw record. It never fails:
// missing or unparseable numeric fields resolve to 0, which later filters
// exclude naturally.
func Normalize(rec Record) models.DriverUnit {
	name := rec.str(nameKeys)
	return models.DriverUnit{
		ID:       rec.str(idKeys),
		Name:     name,
		Voltage:  int(math.Round(rec.num(voltKeys))),
		Wattage:  nonNegative(rec.num(wattKeys)),
		Current:  nonNegative(rec.num(ampKeys)),
		Price:    nonNegative(rec.num(priceKeys)),
		Location: rec.str(locationKeys),
		TypeKey:  TypeKey(name),
	}
}

// NormalizeAll normalizes every record, preserving order.
func NormalizeAll(recs []Record) []models.DriverUnit {
	out := make([]models.DriverUnit, 0, len(recs))
	for _, r := range recs {
		out = append(out, Normalize(r))
	}
	return out
}

// TypeKey derives the product-family key from a driver name: lower-cased,
// '-' and '_' treated as spaces, whitespace runs collapsed, trimmed.
// An empty name yields an empty key.
func TypeKey(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	lower := cases.Lower(language.Und).String(name)
	lower = strings.NewReplacer("-", " ", "_", " ").Replace(lower)
	return strings.Join(strings.Fields(lower), " ")
}

// lookup returns the value stored under key, falling back to a
// case-insensitive match. Among several case variants the lexically
// smallest key wins, so the choice does not depend on map order.
func (r Record) lookup(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	var variants []string
	for k := range r {
		if strings.EqualFold(k, key) {
			variants = append(variants, k)
		}
	}
	if len(variants) == 0 {
		return nil, false
	}
	return r[slices.Min(variants)], true
}

func (r Record) str(keys []string) string {
	for _, k := range keys {
		v, ok := r.lookup(k)
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case []byte:
			s = string(t)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (r Record) num(keys []string) float64 {
	for _, k := range keys {
		v, ok := r.lookup(k)
		if !ok {
			continue
		}
		if f := toFloat(v); f != 0 {
			return f
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case []byte:
		return parseNumber(string(t))
	case string:
		return parseNumber(t)
	}
	return 0
}

// parseNumber accepts plain numbers and values carrying a unit suffix such
// as "100W" or "12 V".
func parseNumber(s string) float64 {
	s = strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsSpace(r)
	})
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
