package selection

import (
	"fmt"

	"github.com/HerbHall/drivermatch/pkg/models"
)

// MixedType tags candidates whose members come from more than one family.
const MixedType = "mixed"

// Search defaults and fixed admission bands.
const (
	DefaultTolerancePercent = 10.0
	DefaultMaxCombinations  = 3

	// ceilingRatio caps combined wattage at 115% of the load.
	ceilingRatio = 1.15
	// closeMatchRatio is the "close match" band applied when a single unit
	// is also available.
	closeMatchRatio = 0.10
	// threeUnitLoad is the load above which 3-unit search runs even when a
	// single unit covers it.
	threeUnitLoad = 500.0

	wattEpsilon = 1e-9
)

// Candidate is a single unit or a combination that covers the load. Units
// may repeat: the same catalog entry used twice means "buy two".
type Candidate struct {
	Units        []models.DriverUnit `json:"units"`
	TotalWattage float64             `json:"total_wattage"`
	Surplus      float64             `json:"surplus"`
	TotalPrice   float64             `json:"total_price"`
	UnitCount    int                 `json:"unit_count"`
	TypeKey      string              `json:"type_key"`
	Priority     bool                `json:"priority"`
}

// Wattages returns the member wattages in member order.
func (c Candidate) Wattages() []float64 {
	w := make([]float64, len(c.Units))
	for i := range c.Units {
		w[i] = c.Units[i].Wattage
	}
	return w
}

// SearchParams configures FindCombinations.
type SearchParams struct {
	RequiredWattage float64
	RequiredVoltage int
	Location        string
	// SingleAvailable is true when a single unit already covers the load and
	// no policy forces multiple units.
	SingleAvailable  bool
	MaxResults       int
	TolerancePercent float64
	// MaxPool caps the number of pool units fed to 3-unit enumeration.
	// Zero means no cap.
	MaxPool int
	Presets PresetTable
}

// poolUnit is a catalog unit admitted to the search pool. group identifies
// its product family; unnamed units each get a group of their own.
type poolUnit struct {
	unit  models.DriverUnit
	group string
}

// FindCombinations enumerates 2- and 3-unit combinations covering the load,
// deduplicated by wattage multiset and ranked by (priority, unit count,
// surplus, price). A matching preset short-circuits generic search.
func FindCombinations(catalog []models.DriverUnit, p SearchParams) []Candidate {
	if len(catalog) == 0 || p.RequiredWattage <= 0 {
		return nil
	}
	if p.MaxResults <= 0 {
		p.MaxResults = DefaultMaxCombinations
	}

	pool := candidatePool(catalog, p)
	if len(pool) == 0 {
		return nil
	}

	if preset, ok := p.Presets.Match(p.RequiredWattage); ok {
		if found := priorityCandidates(pool, preset, p.RequiredWattage); len(found) > 0 {
			rankByCost(found)
			return truncate(found, p.MaxResults)
		}
	}

	s := newSearch(pool, p)
	s.sameType()
	s.crossType()

	out := Dedupe(s.found)
	Rank(out)
	return truncate(out, p.MaxResults)
}

// candidatePool keeps units at the required voltage and location with a
// positive wattage, in catalog order.
func candidatePool(catalog []models.DriverUnit, p SearchParams) []poolUnit {
	pool := make([]poolUnit, 0, len(catalog))
	for i := range catalog {
		u := catalog[i]
		if u.Voltage != p.RequiredVoltage || u.Wattage <= 0 || !u.MatchesLocation(p.Location) {
			continue
		}
		group := u.TypeKey
		if group == "" {
			group = fmt.Sprintf("\x00unnamed:%d", i)
		}
		pool = append(pool, poolUnit{unit: u, group: group})
	}
	return pool
}

type search struct {
	pool      []poolUnit
	required  float64
	tolerance float64
	ceiling   float64
	single    bool
	triples   bool
	maxPool   int
	found     []Candidate
}

func newSearch(pool []poolUnit, p SearchParams) *search {
	return &search{
		pool:      pool,
		required:  p.RequiredWattage,
		tolerance: p.RequiredWattage * p.TolerancePercent / 100,
		ceiling:   p.RequiredWattage * ceilingRatio,
		single:    p.SingleAvailable,
		triples:   !p.SingleAvailable || p.RequiredWattage > threeUnitLoad,
		maxPool:   p.MaxPool,
	}
}

// admitPair applies the 2-unit admission test.
func (s *search) admitPair(total float64) bool {
	if total < s.required {
		return false
	}
	diff := total - s.required
	if diff > s.tolerance && total > s.ceiling {
		return false
	}
	// The close-match band is widened to the ceiling, so with the default
	// tolerance this never rejects a pair the test above admitted.
	if s.single && diff > s.required*closeMatchRatio && total > s.ceiling {
		return false
	}
	return true
}

// admitTriple applies the 3-unit admission test: cover the load and stay
// within the ceiling.
func (s *search) admitTriple(total float64) bool {
	if total < s.required || total > s.ceiling {
		return false
	}
	diff := total - s.required
	return diff <= s.required*closeMatchRatio || total <= s.ceiling
}

// sameType searches within each product family, in order of first
// appearance in the pool.
func (s *search) sameType() {
	for _, g := range groupPool(s.pool) {
		s.pairs(g, g[0].unit.TypeKey, false)
		if s.triples && len(g) >= 3 {
			s.tripleSearch(s.capped(g), g[0].unit.TypeKey, false)
		}
	}
}

// crossType searches the whole pool, skipping combinations drawn entirely
// from one family.
func (s *search) crossType() {
	s.pairs(s.pool, MixedType, true)
	if s.triples {
		s.tripleSearch(s.capped(s.pool), MixedType, true)
	}
}

func (s *search) pairs(units []poolUnit, typeKey string, skipSameGroup bool) {
	for i := range units {
		for j := i; j < len(units); j++ {
			a, b := units[i], units[j]
			if skipSameGroup && a.group == b.group {
				continue
			}
			if !s.admitPair(a.unit.Wattage + b.unit.Wattage) {
				continue
			}
			s.found = append(s.found, newCandidate(s.required, typeKey, a, b))
		}
	}
}

func (s *search) tripleSearch(units []poolUnit, typeKey string, skipSameGroup bool) {
	for i := range units {
		for j := i; j < len(units); j++ {
			for k := j; k < len(units); k++ {
				a, b, c := units[i], units[j], units[k]
				if skipSameGroup && a.group == b.group && b.group == c.group {
					continue
				}
				if !s.admitTriple(a.unit.Wattage + b.unit.Wattage + c.unit.Wattage) {
					continue
				}
				s.found = append(s.found, newCandidate(s.required, typeKey, a, b, c))
			}
		}
	}
}

func (s *search) capped(units []poolUnit) []poolUnit {
	if s.maxPool > 0 && len(units) > s.maxPool {
		return units[:s.maxPool]
	}
	return units
}

// groupPool partitions the pool by group, keeping first-appearance order of
// groups and pool order within each group.
func groupPool(pool []poolUnit) [][]poolUnit {
	index := make(map[string]int)
	var groups [][]poolUnit
	for _, pu := range pool {
		i, ok := index[pu.group]
		if !ok {
			i = len(groups)
			index[pu.group] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], pu)
	}
	return groups
}

func newCandidate(required float64, typeKey string, members ...poolUnit) Candidate {
	c := Candidate{
		Units:     make([]models.DriverUnit, 0, len(members)),
		UnitCount: len(members),
		TypeKey:   typeKey,
	}
	for _, m := range members {
		c.Units = append(c.Units, m.unit)
		c.TotalWattage += m.unit.Wattage
		c.TotalPrice += m.unit.Price
	}
	c.Surplus = c.TotalWattage - required
	return c
}

func truncate(c []Candidate, n int) []Candidate {
	if len(c) > n {
		return c[:n]
	}
	return c
}
