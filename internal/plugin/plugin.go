package plugin

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route is an HTTP endpoint exposed by a module. Path is relative to the
// module mount point /api/v1/{name}.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Module is a unit of drivermatch functionality (catalog, quote).
type Module interface {
	// Name returns the module's unique identifier, also its URL segment.
	Name() string

	Version() string

	// Init receives the module's config subtree (modules.<name>) and a
	// named logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	Start(ctx context.Context) error

	Stop() error

	Routes() []Route
}
