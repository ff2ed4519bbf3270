// Package quote keeps the quotation table: chosen driver options for strip
// runs, their discounts and totals, and a CSV export of the lot.
package quote

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HerbHall/drivermatch/internal/load"
	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned for discounts outside [0, 100].
var ErrInvalidDiscount = errors.New("discount must be between 0 and 100 percent")

// ErrInvalidLine is returned for lines with negative prices or missing
// run data.
var ErrInvalidLine = errors.New("invalid quote line")

var hundred = decimal.NewFromInt(100)

// Service applies quotation rules on top of a QuoteRepository.
type Service struct {
	repo services.QuoteRepository
}

// NewService creates a quotation service.
func NewService(repo services.QuoteRepository) *Service {
	return &Service{repo: repo}
}

// AddLine validates line, derives its wattage from the run when unset, and
// appends it to its quote.
func (s *Service) AddLine(ctx context.Context, line *models.QuoteLine) error {
	if err := prepare(line); err != nil {
		return err
	}
	return s.repo.AddLine(ctx, line)
}

// UpdateLine validates and stores new values for an existing line.
func (s *Service) UpdateLine(ctx context.Context, line *models.QuoteLine) error {
	if err := prepare(line); err != nil {
		return err
	}
	return s.repo.UpdateLine(ctx, line)
}

// DeleteLine removes one line.
func (s *Service) DeleteLine(ctx context.Context, quoteID, lineID string) error {
	return s.repo.DeleteLine(ctx, quoteID, lineID)
}

// Lines returns the lines of a quote in position order.
func (s *Service) Lines(ctx context.Context, quoteID string) ([]models.QuoteLine, error) {
	return s.repo.ListLines(ctx, quoteID)
}

// Clear removes every line of a quote.
func (s *Service) Clear(ctx context.Context, quoteID string) (int, error) {
	return s.repo.Clear(ctx, quoteID)
}

// Totals sums the prices of a quote before and after line discounts.
func (s *Service) Totals(ctx context.Context, quoteID string) (models.QuoteTotals, error) {
	lines, err := s.repo.ListLines(ctx, quoteID)
	if err != nil {
		return models.QuoteTotals{}, err
	}
	return Totals(quoteID, lines), nil
}

// Export writes the quote as CSV to w.
func (s *Service) Export(ctx context.Context, quoteID string, w io.Writer) error {
	lines, err := s.repo.ListLines(ctx, quoteID)
	if err != nil {
		return err
	}
	return WriteCSV(w, lines)
}

// Totals computes gross, discount and net amounts with decimal arithmetic.
// Net is rounded to two decimals.
func Totals(quoteID string, lines []models.QuoteLine) models.QuoteTotals {
	gross := decimal.Zero
	net := decimal.Zero
	for i := range lines {
		price := decimal.NewFromFloat(lines[i].Price)
		factor := hundred.Sub(decimal.NewFromFloat(lines[i].DiscountPercent)).Div(hundred)
		gross = gross.Add(price)
		net = net.Add(price.Mul(factor))
	}
	gross = gross.Round(2)
	net = net.Round(2)

	return models.QuoteTotals{
		QuoteID:  quoteID,
		Lines:    len(lines),
		Gross:    gross.InexactFloat64(),
		Discount: gross.Sub(net).InexactFloat64(),
		Net:      net.InexactFloat64(),
	}
}

func prepare(line *models.QuoteLine) error {
	if line.QuoteID == "" {
		return fmt.Errorf("%w: quote id is required", ErrInvalidLine)
	}
	if line.DiscountPercent < 0 || line.DiscountPercent > 100 {
		return ErrInvalidDiscount
	}
	if line.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidLine)
	}
	if line.LengthUnit == "" {
		line.LengthUnit = models.LengthMeter
	}
	if line.Wattage == 0 {
		res, err := load.Calculate(load.Input{Length: line.Length, LEDCount: line.LEDCount, Unit: line.LengthUnit})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLine, err)
		}
		line.Wattage = res.Wattage
	}
	return nil
}

// csvHeaders returns the export column headers.
func csvHeaders() []string {
	return []string{"brand", "length", "voltage", "led", "wattage", "driver", "price", "discount"}
}

// lineToCSVRow converts a line to a CSV row (matching csvHeaders order).
func lineToCSVRow(l models.QuoteLine) []string {
	length := formatFloat(l.Length)
	if l.LengthUnit == models.LengthFeet {
		length += " ft"
	} else {
		length += " m"
	}
	return []string{
		l.Brand,
		length,
		strconv.Itoa(l.Voltage) + "V",
		strconv.Itoa(l.LEDCount),
		formatFloat(l.Wattage),
		l.DriverLabel,
		decimal.NewFromFloat(l.Price).StringFixed(2),
		formatFloat(l.DiscountPercent) + "%",
	}
}

// WriteCSV writes a header row and one row per line.
func WriteCSV(w io.Writer, lines []models.QuoteLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders()); err != nil {
		return err
	}
	for i := range lines {
		if err := cw.Write(lineToCSVRow(lines[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 2, 64), ".00")
}
