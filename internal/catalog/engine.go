// Package catalog serves driver recommendations over the configured catalog
// provider. It caches catalog snapshots, converts strip runs into loads and
// hands both to the selection engine.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/HerbHall/drivermatch/internal/load"
	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/pkg/models"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a catalog snapshot is reused.
const DefaultCacheTTL = 5 * time.Minute

// EngineConfig tunes an Engine. Zero values fall back to defaults; Params
// is replaced wholesale by selection.DefaultParams when MaxResults is zero.
type EngineConfig struct {
	CacheTTL time.Duration
	Params   selection.Params
	Policy   load.Policy
	Metrics  *Metrics
}

// Engine answers recommendation requests against a cached catalog.
type Engine struct {
	source  Source
	cache   *gocache.Cache
	calc    *load.Cache
	params  selection.Params
	metrics *Metrics
	logger  *zap.Logger
}

// NewEngine creates an engine over src.
func NewEngine(src Source, cfg EngineConfig, logger *zap.Logger) *Engine {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	params := cfg.Params
	if params.MaxResults == 0 {
		params = selection.DefaultParams()
	}
	policy := cfg.Policy
	if policy.Rules == nil {
		policy = load.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:  src,
		cache:   gocache.New(ttl, 2*ttl),
		calc:    load.NewCache(policy),
		params:  params,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Source returns the provider the engine reads from.
func (e *Engine) Source() Source {
	return e.source
}

// Params returns the default selection parameters.
func (e *Engine) Params() selection.Params {
	return e.params
}

// Catalog returns the snapshot for location, loading it through the source
// on a cache miss. The returned slice is the caller's to modify.
func (e *Engine) Catalog(ctx context.Context, location string) ([]models.DriverUnit, error) {
	key := e.source.Name() + "|" + cacheLocation(location)

	if v, ok := e.cache.Get(key); ok {
		e.metrics.observeCache(true)
		e.logger.Debug("catalog cache hit", zap.String("key", key))
		return slices.Clone(v.([]models.DriverUnit)), nil
	}

	e.metrics.observeCache(false)
	units, err := e.source.Drivers(ctx, location)
	if err != nil {
		e.logger.Error("catalog source failed",
			zap.String("source", e.source.Name()),
			zap.String("location", location),
			zap.Error(err),
		)
		return nil, err
	}
	e.cache.SetDefault(key, units)
	e.logger.Debug("catalog cache filled", zap.String("key", key), zap.Int("units", len(units)))
	return slices.Clone(units), nil
}

// Invalidate drops every cached snapshot and the memoized load calculation.
func (e *Engine) Invalidate() {
	e.cache.Flush()
	e.calc.Invalidate()
	e.logger.Debug("catalog cache invalidated")
}

func cacheLocation(location string) string {
	if models.IsAnyLocation(location) {
		return models.LocationBoth
	}
	return strings.ToLower(location)
}

// RecommendRequest describes a strip run to power.
type RecommendRequest struct {
	Length   float64           `json:"length"`
	LEDCount int               `json:"led_count"`
	Unit     models.LengthUnit `json:"unit"`
	Voltage  int               `json:"voltage"`
	Location string            `json:"location"`
	// Optional overrides of the configured selection parameters.
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`
	MaxResults       *int     `json:"max_results,omitempty"`
}

// Recommendation is the answer to a RecommendRequest.
type Recommendation struct {
	Wattage          float64                   `json:"wattage"`
	ConvertedLength  float64                   `json:"converted_length"`
	Voltage          int                       `json:"voltage"`
	RequiresMultiple bool                      `json:"requires_multiple"`
	SingleAvailable  bool                      `json:"single_available"`
	Options          []selection.DisplayOption `json:"options"`
	Nearest          *models.DriverUnit        `json:"nearest,omitempty"`
	NearestHint      *selection.Hint           `json:"nearest_hint,omitempty"`
}

// Recommend converts the run into a load and returns the driver options.
// Invalid input is reported with load.ErrInvalidInput or
// selection.ErrInvalidParams.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	if req.Unit == "" {
		req.Unit = models.LengthMeter
	}
	calc, err := e.calc.Get(load.Input{Length: req.Length, LEDCount: req.LEDCount, Unit: req.Unit}, req.Voltage)
	if err != nil {
		e.metrics.observeRecommendation(OutcomeInvalid, 0)
		return nil, err
	}

	params := e.params
	if req.TolerancePercent != nil {
		params.TolerancePercent = *req.TolerancePercent
	}
	if req.MaxResults != nil {
		params.MaxResults = *req.MaxResults
	}

	units, err := e.Catalog(ctx, req.Location)
	if err != nil {
		e.metrics.observeRecommendation(OutcomeError, 0)
		return nil, err
	}

	res, err := selection.Recommend(units, selection.Request{
		RequiredWattage:  calc.Wattage,
		RequiredVoltage:  req.Voltage,
		Location:         req.Location,
		RequiresMultiple: calc.RequiresMultiple,
		Params:           params,
	})
	if err != nil {
		e.metrics.observeRecommendation(OutcomeInvalid, 0)
		return nil, err
	}

	outcome := OutcomeOptions
	switch {
	case len(res.Options) > 0:
	case res.NearestHint != nil:
		outcome = OutcomeHint
	default:
		outcome = OutcomeEmpty
	}
	e.metrics.observeRecommendation(outcome, len(res.Options))
	e.logger.Debug("recommendation",
		zap.Float64("wattage", calc.Wattage),
		zap.Int("voltage", req.Voltage),
		zap.String("location", req.Location),
		zap.Bool("requires_multiple", calc.RequiresMultiple),
		zap.Int("options", len(res.Options)),
	)

	return &Recommendation{
		Wattage:          calc.Wattage,
		ConvertedLength:  calc.LengthMeters,
		Voltage:          req.Voltage,
		RequiresMultiple: calc.RequiresMultiple,
		SingleAvailable:  res.SingleAvailable,
		Options:          res.Options,
		Nearest:          res.Nearest,
		NearestHint:      res.NearestHint,
	}, nil
}

// IsInvalid reports whether err stems from bad request input.
func IsInvalid(err error) bool {
	return errors.Is(err, load.ErrInvalidInput) || errors.Is(err, selection.ErrInvalidParams)
}
