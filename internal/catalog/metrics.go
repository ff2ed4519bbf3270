package catalog

import "github.com/prometheus/client_golang/prometheus"

// Recommendation outcomes.
const (
	OutcomeOptions = "options"
	OutcomeHint    = "hint"
	OutcomeEmpty   = "empty"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the catalog collectors. A nil *Metrics records nothing.
type Metrics struct {
	recommendations *prometheus.CounterVec
	options         prometheus.Histogram
	cache           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drivermatch_recommendations_total",
			Help: "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		options: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "drivermatch_recommendation_options",
			Help:    "Number of options returned per recommendation.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drivermatch_catalog_cache_total",
			Help: "Catalog snapshot cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.recommendations, m.options, m.cache)
	}
	return m
}

func (m *Metrics) observeRecommendation(outcome string, options int) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInvalid && outcome != OutcomeError {
		m.options.Observe(float64(options))
	}
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
