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

// QuoteRepository stores quotation lines grouped by quote ID.
type QuoteRepository interface {
	// AddLine appends a line to its quote. ID and Position are assigned.
	AddLine(ctx context.Context, line *models.QuoteLine) error

	// GetLine returns one line of a quote.
	GetLine(ctx context.Context, quoteID, lineID string) (*models.QuoteLine, error)

	// UpdateLine replaces the mutable fields of an existing line.
	UpdateLine(ctx context.Context, line *models.QuoteLine) error

	// DeleteLine removes one line of a quote.
	DeleteLine(ctx context.Context, quoteID, lineID string) error

	// ListLines returns the lines of a quote in position order.
	ListLines(ctx context.Context, quoteID string) ([]models.QuoteLine, error)

	// Clear deletes every line of a quote and returns how many were removed.
	Clear(ctx context.Context, quoteID string) (int, error)
}

// Compile-time interface guard.
var _ QuoteRepository = (*SQLiteQuoteRepository)(nil)

// SQLiteQuoteRepository implements QuoteRepository on the quote_lines table.
type SQLiteQuoteRepository struct {
	db    *sql.DB
	store plugin.Store
}

// NewSQLiteQuoteRepository runs the quote migrations and returns the
// repository.
func NewSQLiteQuoteRepository(ctx context.Context, store plugin.Store) (*SQLiteQuoteRepository, error) {
	if err := store.Migrate(ctx, "quote", quoteMigrations); err != nil {
		return nil, fmt.Errorf("quote migrations: %w", err)
	}
	return &SQLiteQuoteRepository{db: store.DB(), store: store}, nil
}

const quoteLineColumns = `id, quote_id, position, brand, length, length_unit, voltage,
	led_count, wattage, driver_label, price, discount_percent, created_at`

func (r *SQLiteQuoteRepository) AddLine(ctx context.Context, line *models.QuoteLine) error {
	if line.QuoteID == "" {
		return errors.New("add quote line: empty quote id")
	}
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now().UTC()
	}

	return r.store.Tx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM quote_lines WHERE quote_id = ?`, line.QuoteID,
		).Scan(&next); err != nil {
			return fmt.Errorf("next quote position: %w", err)
		}
		line.Position = next

		_, err := tx.ExecContext(ctx, `
			INSERT INTO quote_lines (`+quoteLineColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, line.QuoteID, line.Position, line.Brand, line.Length, string(line.LengthUnit),
			line.Voltage, line.LEDCount, line.Wattage, line.DriverLabel, line.Price,
			line.DiscountPercent, line.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("add quote line: %w", err)
		}
		return nil
	})
}

func (r *SQLiteQuoteRepository) GetLine(ctx context.Context, quoteID, lineID string) (*models.QuoteLine, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+quoteLineColumns+` FROM quote_lines WHERE quote_id = ? AND id = ?`, quoteID, lineID)
	l, err := scanQuoteLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quote line %q: %w", lineID, err)
	}
	return l, nil
}

func (r *SQLiteQuoteRepository) UpdateLine(ctx context.Context, line *models.QuoteLine) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quote_lines SET
			brand = ?, length = ?, length_unit = ?, voltage = ?, led_count = ?,
			wattage = ?, driver_label = ?, price = ?, discount_percent = ?
		WHERE quote_id = ? AND id = ?`,
		line.Brand, line.Length, string(line.LengthUnit), line.Voltage, line.LEDCount,
		line.Wattage, line.DriverLabel, line.Price, line.DiscountPercent,
		line.QuoteID, line.ID,
	)
	if err != nil {
		return fmt.Errorf("update quote line: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteQuoteRepository) DeleteLine(ctx context.Context, quoteID, lineID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM quote_lines WHERE quote_id = ? AND id = ?`, quoteID, lineID)
	if err != nil {
		return fmt.Errorf("delete quote line: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteQuoteRepository) ListLines(ctx context.Context, quoteID string) ([]models.QuoteLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+quoteLineColumns+` FROM quote_lines WHERE quote_id = ? ORDER BY position`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote lines: %w", err)
	}
	defer rows.Close()

	lines := []models.QuoteLine{}
	for rows.Next() {
		l, err := scanQuoteLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote line: %w", err)
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

func (r *SQLiteQuoteRepository) Clear(ctx context.Context, quoteID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quote_lines WHERE quote_id = ?`, quoteID)
	if err != nil {
		return 0, fmt.Errorf("clear quote %q: %w", quoteID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanQuoteLine(row rowScanner) (*models.QuoteLine, error) {
	var l models.QuoteLine
	var unit string
	err := row.Scan(
		&l.ID, &l.QuoteID, &l.Position, &l.Brand, &l.Length, &unit, &l.Voltage,
		&l.LEDCount, &l.Wattage, &l.DriverLabel, &l.Price, &l.DiscountPercent, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.LengthUnit = models.LengthUnit(unit)
	return &l, nil
}

var quoteMigrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create quote_lines table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE quote_lines (
					id               TEXT    PRIMARY KEY,
					quote_id         TEXT    NOT NULL,
					position         INTEGER NOT NULL,
					brand            TEXT    NOT NULL DEFAULT '',
					length           REAL    NOT NULL DEFAULT 0,
					length_unit      TEXT    NOT NULL DEFAULT 'Meter',
					voltage          INTEGER NOT NULL DEFAULT 0,
					led_count        INTEGER NOT NULL DEFAULT 0,
					wattage          REAL    NOT NULL DEFAULT 0,
					driver_label     TEXT    NOT NULL DEFAULT '',
					price            REAL    NOT NULL DEFAULT 0,
					discount_percent REAL    NOT NULL DEFAULT 0,
					created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`CREATE INDEX idx_quote_lines_quote ON quote_lines (quote_id, position)`)
			return err
		},
	},
}
