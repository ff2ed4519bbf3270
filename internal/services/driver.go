package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/drivermatch/pkg/models"
	"github.com/HerbHall/drivermatch/pkg/plugin"
	"github.com/google/uuid"
)

// DriverFilter narrows driver listings. Location "both" or empty matches
// every unit; Voltage zero matches every voltage.
type DriverFilter struct {
	Location string
	Voltage  int
}

// DriverRepository provides access to the stored driver catalog.
type DriverRepository interface {
	// Get returns a single driver by ID.
	Get(ctx context.Context, id string) (*models.DriverUnit, error)

	// List returns a filtered, paginated list of drivers.
	List(ctx context.Context, filter DriverFilter, opts ListOptions) (*ListResult[models.DriverUnit], error)

	// All returns every driver matching filter in insertion order.
	All(ctx context.Context, filter DriverFilter) ([]models.DriverUnit, error)

	// Create inserts a driver. If ID is empty, a UUID is generated.
	Create(ctx context.Context, d *models.DriverUnit) error

	// BulkInsert inserts drivers in one transaction and returns the count.
	BulkInsert(ctx context.Context, drivers []models.DriverUnit) (int, error)

	// Delete removes a driver by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored drivers.
	Count(ctx context.Context) (int, error)
}

// Compile-time interface guard.
var _ DriverRepository = (*SQLiteDriverRepository)(nil)

// SQLiteDriverRepository implements DriverRepository on the drivers table.
type SQLiteDriverRepository struct {
	db    *sql.DB
	store plugin.Store
}

// NewSQLiteDriverRepository runs the drivers migrations and returns the
// repository.
func NewSQLiteDriverRepository(ctx context.Context, store plugin.Store) (*SQLiteDriverRepository, error) {
	if err := store.Migrate(ctx, "catalog", driverMigrations); err != nil {
		return nil, fmt.Errorf("catalog migrations: %w", err)
	}
	return &SQLiteDriverRepository{db: store.DB(), store: store}, nil
}

const driverColumns = `id, name, volt, watt, amp, price, place`

func (r *SQLiteDriverRepository) Get(ctx context.Context, id string) (*models.DriverUnit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id)
	d, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get driver %q: %w", id, err)
	}
	return d, nil
}

func driverWhere(filter DriverFilter) (string, []any) {
	where := "1=1"
	var args []any
	if !models.IsAnyLocation(filter.Location) {
		where += " AND place = ? COLLATE NOCASE"
		args = append(args, filter.Location)
	}
	if filter.Voltage != 0 {
		where += " AND volt = ?"
		args = append(args, filter.Voltage)
	}
	return where, args
}

func (r *SQLiteDriverRepository) List(ctx context.Context, filter DriverFilter, opts ListOptions) (*ListResult[models.DriverUnit], error) {
	opts = normalizeListOptions(opts)

	sortCol := "seq"
	allowedSorts := map[string]string{
		"name":       "name",
		"voltage":    "volt",
		"wattage":    "watt",
		"price":      "price",
		"created_at": "created_at",
	}
	if col, ok := allowedSorts[opts.SortBy]; ok {
		sortCol = col
	}
	orderDir := "ASC"
	if opts.SortOrder == "desc" {
		orderDir = "DESC"
	}

	where, args := driverWhere(filter)

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM drivers WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}

	queryArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)
	//nolint:gosec // where and sortCol are validated above
	query := fmt.Sprintf("SELECT %s FROM drivers WHERE %s ORDER BY %s %s, seq ASC LIMIT ? OFFSET ?",
		driverColumns, where, sortCol, orderDir)

	items, err := r.query(ctx, query, queryArgs...)
	if err != nil {
		return nil, err
	}
	return &ListResult[models.DriverUnit]{Items: items, Total: total}, nil
}

func (r *SQLiteDriverRepository) All(ctx context.Context, filter DriverFilter) ([]models.DriverUnit, error) {
	where, args := driverWhere(filter)
	//nolint:gosec // where uses parameterized placeholders only
	return r.query(ctx, "SELECT "+driverColumns+" FROM drivers WHERE "+where+" ORDER BY seq ASC", args...)
}

func (r *SQLiteDriverRepository) query(ctx context.Context, query string, args ...any) ([]models.DriverUnit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []models.DriverUnit{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver row: %w", err)
		}
		drivers = append(drivers, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}
	return drivers, nil
}

func (r *SQLiteDriverRepository) Create(ctx context.Context, d *models.DriverUnit) error {
	return r.store.Tx(ctx, func(tx *sql.Tx) error {
		return insertDriver(ctx, tx, d)
	})
}

func (r *SQLiteDriverRepository) BulkInsert(ctx context.Context, drivers []models.DriverUnit) (int, error) {
	err := r.store.Tx(ctx, func(tx *sql.Tx) error {
		for i := range drivers {
			if err := insertDriver(ctx, tx, &drivers[i]); err != nil {
				return fmt.Errorf("driver %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(drivers), nil
}

func insertDriver(ctx context.Context, tx *sql.Tx, d *models.DriverUnit) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	} else {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers WHERE id = ?`, d.ID).Scan(&n); err != nil {
			return fmt.Errorf("check driver %q: %w", d.ID, err)
		}
		if n > 0 {
			return fmt.Errorf("driver %q: %w", d.ID, ErrAlreadyExists)
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (id, name, volt, watt, amp, price, place, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Voltage, d.Wattage, d.Current, d.Price, d.Location, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

func (r *SQLiteDriverRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteDriverRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count drivers: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*models.DriverUnit, error) {
	var d models.DriverUnit
	if err := row.Scan(&d.ID, &d.Name, &d.Voltage, &d.Wattage, &d.Current, &d.Price, &d.Location); err != nil {
		return nil, err
	}
	return &d, nil
}

var driverMigrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create drivers table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE drivers (
					seq        INTEGER PRIMARY KEY AUTOINCREMENT,
					id         TEXT    NOT NULL UNIQUE,
					name       TEXT    NOT NULL DEFAULT '',
					volt       INTEGER NOT NULL DEFAULT 0,
					watt       REAL    NOT NULL DEFAULT 0,
					amp        REAL    NOT NULL DEFAULT 0,
					price      REAL    NOT NULL DEFAULT 0,
					place      TEXT    NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index drivers by voltage and place",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_drivers_volt_place ON drivers (volt, place COLLATE NOCASE)`)
			return err
		},
	},
}
