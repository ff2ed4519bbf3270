package load

// Rule forces a multi-driver setup for runs of Voltage longer than MaxLength
// metres.
type Rule struct {
	Voltage   int     `mapstructure:"voltage" yaml:"voltage" json:"voltage"`
	MaxLength float64 `mapstructure:"max_length" yaml:"max_length" json:"max_length"`
}

// Policy is the set of multi-driver rules.
type Policy struct {
	Rules []Rule `mapstructure:"multiple_driver_rules"`
}

// DefaultPolicy returns 12 V over 10 m and 24 V over 15 m.
func DefaultPolicy() Policy {
	return Policy{Rules: []Rule{
		{Voltage: 12, MaxLength: 10},
		{Voltage: 24, MaxLength: 15},
	}}
}

// RequiresMultiple reports whether a run of lengthMeters at voltage needs
// more than one driver. Voltages without a rule never do.
func (p Policy) RequiresMultiple(voltage int, lengthMeters float64) bool {
	for _, r := range p.Rules {
		if r.Voltage == voltage && lengthMeters > r.MaxLength {
			return true
		}
	}
	return false
}
