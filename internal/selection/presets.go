package selection

import "math"

// Preset lists installer-preferred wattage multisets for loads close to a
// given wattage. When any target of a matching preset can be built from the
// pool, generic search is skipped.
type Preset struct {
	Wattage float64     `json:"wattage" yaml:"wattage" mapstructure:"wattage"`
	Band    float64     `json:"band" yaml:"band" mapstructure:"band"`
	Targets [][]float64 `json:"targets" yaml:"targets" mapstructure:"targets"`
}

// Matches reports whether required lies strictly within Band of Wattage.
// A zero band requires an exact match.
func (p Preset) Matches(required float64) bool {
	d := math.Abs(required - p.Wattage)
	if p.Band <= 0 {
		return d < wattEpsilon
	}
	return d < p.Band
}

// PresetTable is an ordered list of presets; the first match applies.
type PresetTable []Preset

// Match returns the first preset matching required.
func (t PresetTable) Match(required float64) (Preset, bool) {
	for _, p := range t {
		if p.Matches(required) {
			return p, true
		}
	}
	return Preset{}, false
}

// DefaultPresets is the built-in table: configurations installers prefer for
// a 306 W load over what generic ranking would pick.
func DefaultPresets() PresetTable {
	return PresetTable{
		{
			Wattage: 306,
			Band:    1,
			Targets: [][]float64{
				{300, 60},
				{150, 100, 60},
				{200, 60, 60},
				{150, 200},
				{100, 100, 150},
			},
		},
	}
}

// priorityCandidates builds a candidate for every preset target whose slots
// can all be filled from the pool. A single pool unit may fill several slots
// of the same wattage. The first pool unit of each wattage is used.
func priorityCandidates(pool []poolUnit, preset Preset, required float64) []Candidate {
	byWatt := make(map[float64]poolUnit, len(pool))
	for _, pu := range pool {
		if _, seen := byWatt[pu.unit.Wattage]; !seen {
			byWatt[pu.unit.Wattage] = pu
		}
	}

	var out []Candidate
	for _, target := range preset.Targets {
		if len(target) == 0 {
			continue
		}
		members := make([]poolUnit, 0, len(target))
		for _, w := range target {
			pu, ok := byWatt[w]
			if !ok {
				members = nil
				break
			}
			members = append(members, pu)
		}
		if members == nil {
			continue
		}
		c := newCandidate(required, MixedType, members...)
		if c.TotalWattage < required {
			continue
		}
		c.Priority = true
		out = append(out, c)
	}
	return out
}
