package quote

import (
	"context"
	"errors"

	"github.com/HerbHall/drivermatch/internal/plugin"
	"github.com/HerbHall/drivermatch/internal/services"
	pub "github.com/HerbHall/drivermatch/pkg/plugin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Module     = (*Module)(nil)
	_ pub.HealthChecker = (*Module)(nil)
)

// Module exposes the quotation table.
type Module struct {
	store   pub.Store
	logger  *zap.Logger
	svc     *Service
	handler *Handler
}

// NewModule creates the quote module on store.
func NewModule(store pub.Store) *Module {
	return &Module{store: store}
}

func (m *Module) Name() string    { return "quote" }
func (m *Module) Version() string { return "1.0.0" }

func (m *Module) Init(_ *viper.Viper, logger *zap.Logger) error {
	if m.store == nil {
		return errors.New("quote module requires a store")
	}
	m.logger = logger
	repo, err := services.NewSQLiteQuoteRepository(context.Background(), m.store)
	if err != nil {
		return err
	}
	m.svc = NewService(repo)
	m.handler = NewHandler(m.svc, logger)
	m.logger.Info("quote module initialized")
	return nil
}

func (m *Module) Start(context.Context) error { return nil }
func (m *Module) Stop() error                 { return nil }

func (m *Module) Routes() []plugin.Route {
	return m.handler.Routes()
}

func (m *Module) Health(ctx context.Context) pub.HealthStatus {
	if err := m.store.DB().PingContext(ctx); err != nil {
		return pub.HealthStatus{Status: pub.StatusUnhealthy, Message: err.Error()}
	}
	return pub.HealthStatus{Status: pub.StatusHealthy}
}

// Service returns the quotation service built in Init.
func (m *Module) Service() *Service {
	return m.svc
}
