package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/HerbHall/drivermatch/internal/config"
	"github.com/HerbHall/drivermatch/internal/load"
	"github.com/HerbHall/drivermatch/internal/plugin"
	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/internal/services"
	pkgcatalog "github.com/HerbHall/drivermatch/pkg/catalog"
	"github.com/HerbHall/drivermatch/pkg/models"
	pub "github.com/HerbHall/drivermatch/pkg/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Catalog source kinds accepted by catalog.source.
const (
	SourceSQLite   = "sqlite"
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

// Compile-time interface guards.
var (
	_ plugin.Module     = (*Module)(nil)
	_ pub.HealthChecker = (*Module)(nil)
	_ pub.Validator     = (*Module)(nil)
)

// Module wires the catalog source, engine and HTTP handler.
type Module struct {
	store  pub.Store
	cfg    *config.Config
	reg    prometheus.Registerer
	logger *zap.Logger

	source  Source
	repo    *services.SQLiteDriverRepository
	engine  *Engine
	handler *Handler
}

// NewModule creates the catalog module. store backs the "sqlite" source and
// may be nil for the others. cfg is the root configuration.
func NewModule(store pub.Store, cfg *config.Config, reg prometheus.Registerer) *Module {
	return &Module{store: store, cfg: cfg, reg: reg}
}

func (m *Module) Name() string    { return "catalog" }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Init(_ *viper.Viper, logger *zap.Logger) error {
	m.logger = logger

	src, repo, err := OpenSource(context.Background(), m.cfg, m.store)
	if err != nil {
		return err
	}
	m.source, m.repo = src, repo

	engineCfg, err := EngineConfigFromConfig(m.cfg, NewMetrics(m.reg))
	if err != nil {
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	}
	m.engine = NewEngine(src, engineCfg, logger)

	var writable services.DriverRepository
	if repo != nil {
		writable = repo
	}
	m.handler = NewHandler(m.engine, writable, optionsFromConfig(m.cfg), logger)

	m.logger.Info("catalog module initialized", zap.String("source", src.Name()))
	return nil
}

// ValidateConfig checks the selection parameters assembled in Init.
func (m *Module) ValidateConfig() error {
	return m.engine.Params().Validate()
}

// Start seeds an empty SQLite catalog from the embedded records when
// catalog.seed is set.
func (m *Module) Start(ctx context.Context) error {
	if m.repo == nil || !m.cfg.GetBool("catalog.seed") {
		return nil
	}
	n, err := SeedFromEmbedded(ctx, m.repo, pkgcatalog.NewCatalog())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if n > 0 {
		m.logger.Info("seeded driver catalog", zap.Int("drivers", n))
	}
	return nil
}

func (m *Module) Stop() error {
	if c, ok := m.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (m *Module) Routes() []plugin.Route {
	return m.handler.Routes()
}

// Health reports unhealthy when the source is unreachable or the catalog
// cannot be read, and degraded when it is empty.
func (m *Module) Health(ctx context.Context) pub.HealthStatus {
	if p, ok := m.source.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return pub.HealthStatus{Status: pub.StatusUnhealthy, Message: err.Error(), Details: map[string]string{"source": m.source.Name()}}
		}
	}
	units, err := m.engine.Catalog(ctx, models.LocationBoth)
	if err != nil {
		return pub.HealthStatus{Status: pub.StatusUnhealthy, Message: err.Error()}
	}
	details := map[string]string{"source": m.source.Name(), "drivers": fmt.Sprint(len(units))}
	if len(units) == 0 {
		return pub.HealthStatus{Status: pub.StatusDegraded, Message: "catalog is empty", Details: details}
	}
	return pub.HealthStatus{Status: pub.StatusHealthy, Details: details}
}

// Engine returns the recommendation engine built in Init.
func (m *Module) Engine() *Engine {
	return m.engine
}

// OpenSource builds the provider named by catalog.source. For the sqlite
// source the driver repository is returned as well.
func OpenSource(ctx context.Context, cfg *config.Config, store pub.Store) (Source, *services.SQLiteDriverRepository, error) {
	switch kind := cfg.GetString("catalog.source"); kind {
	case "", SourceSQLite:
		if store == nil {
			return nil, nil, fmt.Errorf("catalog source %q requires a store", SourceSQLite)
		}
		repo, err := services.NewSQLiteDriverRepository(ctx, store)
		if err != nil {
			return nil, nil, err
		}
		return NewRepositorySource(repo), repo, nil
	case SourceEmbedded:
		return NewEmbeddedSource(pkgcatalog.NewCatalog()), nil, nil
	case SourcePostgres:
		dsn := cfg.GetString("catalog.postgres_dsn")
		if dsn == "" {
			return nil, nil, fmt.Errorf("catalog source %q requires catalog.postgres_dsn", SourcePostgres)
		}
		src, err := OpenPostgres(dsn, cfg.GetString("catalog.postgres_table"))
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", kind)
	}
}

// SeedFromEmbedded inserts the embedded seed records into repo when repo is
// empty. It returns the number of drivers inserted.
func SeedFromEmbedded(ctx context.Context, repo services.DriverRepository, cat *pkgcatalog.Catalog) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	recs, err := cat.Records()
	if err != nil {
		return 0, err
	}
	n, _, err = ImportRecords(ctx, repo, recs)
	return n, err
}

// ImportRecords normalizes raw records and inserts them into repo in one
// transaction. Records without a voltage or wattage are skipped and counted.
func ImportRecords(ctx context.Context, repo services.DriverRepository, recs []map[string]any) (imported, skipped int, err error) {
	units := normalizeRecords(recs)
	usable := units[:0]
	for _, u := range units {
		if u.Voltage <= 0 || u.Wattage <= 0 {
			skipped++
			continue
		}
		usable = append(usable, u)
	}
	if len(usable) == 0 {
		return 0, skipped, nil
	}
	imported, err = repo.BulkInsert(ctx, usable)
	return imported, skipped, err
}

// EngineConfigFromConfig reads the selection, load and cache settings.
func EngineConfigFromConfig(cfg *config.Config, metrics *Metrics) (EngineConfig, error) {
	params, err := ParamsFromConfig(cfg)
	if err != nil {
		return EngineConfig{}, err
	}
	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return EngineConfig{}, err
	}
	return EngineConfig{
		CacheTTL: cfg.GetDuration("catalog.cache_ttl"),
		Params:   params,
		Policy:   policy,
		Metrics:  metrics,
	}, nil
}

// ParamsFromConfig reads selection.* over the defaults. Presets fall back to
// the built-in table unless selection.presets is set; a preset table that
// does not decode is an error.
func ParamsFromConfig(cfg *config.Config) (selection.Params, error) {
	p := selection.DefaultParams()
	if cfg.IsSet("selection.tolerance_percent") {
		p.TolerancePercent = cfg.GetFloat64("selection.tolerance_percent")
	}
	if cfg.IsSet("selection.max_results") {
		p.MaxResults = cfg.GetInt("selection.max_results")
	}
	if cfg.IsSet("selection.max_percentage_diff") {
		p.MaxPercentageDiff = cfg.GetFloat64("selection.max_percentage_diff")
	}
	if cfg.IsSet("selection.max_pool") {
		p.MaxPool = cfg.GetInt("selection.max_pool")
	}
	if cfg.IsSet("selection.presets") {
		var presets selection.PresetTable
		if err := cfg.UnmarshalKey("selection.presets", &presets); err != nil {
			return selection.Params{}, fmt.Errorf("decode selection.presets: %w", err)
		}
		p.Presets = presets
	}
	return p, nil
}

// PolicyFromConfig reads load.multiple_driver_rules, defaulting to the
// built-in 12 V / 24 V rules when the key is unset.
func PolicyFromConfig(cfg *config.Config) (load.Policy, error) {
	if !cfg.IsSet("load.multiple_driver_rules") {
		return load.DefaultPolicy(), nil
	}
	var rules []load.Rule
	if err := cfg.UnmarshalKey("load.multiple_driver_rules", &rules); err != nil {
		return load.Policy{}, fmt.Errorf("decode load.multiple_driver_rules: %w", err)
	}
	for i, r := range rules {
		if r.Voltage <= 0 || r.MaxLength <= 0 {
			return load.Policy{}, fmt.Errorf("load.multiple_driver_rules[%d]: voltage and max_length must be positive", i)
		}
	}
	return load.Policy{Rules: rules}, nil
}

func optionsFromConfig(cfg *config.Config) OptionsResponse {
	opts := OptionsResponse{
		Voltages:   cfg.GetIntSlice("load.voltages"),
		LEDOptions: cfg.GetIntSlice("load.led_options"),
		Units:      []string{string(models.LengthMeter), string(models.LengthFeet)},
		Locations:  []string{models.LocationBoth, models.LocationIndoor, models.LocationOutdoor},
	}
	if len(opts.Voltages) == 0 {
		opts.Voltages = []int{12, 24}
	}
	if len(opts.LEDOptions) == 0 {
		opts.LEDOptions = []int{60, 120, 180, 240}
	}
	return opts
}
