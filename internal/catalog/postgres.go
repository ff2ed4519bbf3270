package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/pkg/models"
	"github.com/lib/pq"
)

// DefaultPostgresTable is the upstream catalog table.
const DefaultPostgresTable = "Drivers"

// PostgresSource reads the upstream catalog table. Columns are scanned
// generically so that both "Watt" and "watt" style schemas work.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// OpenPostgres opens a connection pool for dsn. The connection is verified
// lazily on first query.
func OpenPostgres(dsn, table string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresSource(db, table), nil
}

// NewPostgresSource reads from table through db.
func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	if table == "" {
		table = DefaultPostgresTable
	}
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Drivers(ctx context.Context, location string) ([]models.DriverUnit, error) {
	//nolint:gosec // table name is quoted as an identifier
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(s.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", s.table, err)
	}

	var units []models.DriverUnit
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.table, err)
		}
		units = append(units, selection.Normalize(rowRecord(cols, vals)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return selection.FilterLocation(units, location), nil
}

// Ping verifies the connection.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// rowRecord zips column names with scanned values. Text columns arrive as
// []byte from lib/pq and are turned into strings.
func rowRecord(cols []string, vals []any) selection.Record {
	rec := make(selection.Record, len(cols))
	for i, c := range cols {
		if b, ok := vals[i].([]byte); ok {
			rec[c] = string(b)
			continue
		}
		rec[c] = vals[i]
	}
	return rec
}
