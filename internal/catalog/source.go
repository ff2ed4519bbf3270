package catalog

import (
	"context"
	"fmt"

	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/internal/services"
	pkgcatalog "github.com/HerbHall/drivermatch/pkg/catalog"
	"github.com/HerbHall/drivermatch/pkg/models"
)

// Source provides a snapshot of the driver catalog for one location.
// Location "both" or empty returns every unit.
type Source interface {
	Name() string
	Drivers(ctx context.Context, location string) ([]models.DriverUnit, error)
}

// Compile-time interface guards.
var (
	_ Source = (*EmbeddedSource)(nil)
	_ Source = (*RepositorySource)(nil)
	_ Source = (*PostgresSource)(nil)
)

// EmbeddedSource serves the seed catalog compiled into the binary.
type EmbeddedSource struct {
	cat *pkgcatalog.Catalog
}

// NewEmbeddedSource wraps the embedded seed catalog.
func NewEmbeddedSource(cat *pkgcatalog.Catalog) *EmbeddedSource {
	return &EmbeddedSource{cat: cat}
}

func (s *EmbeddedSource) Name() string { return "embedded" }

func (s *EmbeddedSource) Drivers(_ context.Context, location string) ([]models.DriverUnit, error) {
	recs, err := s.cat.Records()
	if err != nil {
		return nil, err
	}
	return selection.FilterLocation(normalizeRecords(recs), location), nil
}

// RepositorySource serves the catalog stored in SQLite.
type RepositorySource struct {
	repo services.DriverRepository
}

// NewRepositorySource reads drivers from repo.
func NewRepositorySource(repo services.DriverRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) Name() string { return "sqlite" }

func (s *RepositorySource) Drivers(ctx context.Context, location string) ([]models.DriverUnit, error) {
	units, err := s.repo.All(ctx, services.DriverFilter{Location: location})
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	for i := range units {
		units[i].TypeKey = selection.TypeKey(units[i].Name)
	}
	return units, nil
}

func normalizeRecords(recs []map[string]any) []models.DriverUnit {
	raw := make([]selection.Record, len(recs))
	for i, rec := range recs {
		raw[i] = rec
	}
	return selection.NormalizeAll(raw)
}
