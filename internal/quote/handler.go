package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HerbHall/drivermatch/internal/plugin"
	"github.com/HerbHall/drivermatch/internal/server"
	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/pkg/models"
	"go.uber.org/zap"
)

// LineRequest is the body of line create and update requests.
type LineRequest struct {
	Brand           string            `json:"brand"`
	Length          float64           `json:"length"`
	LengthUnit      models.LengthUnit `json:"length_unit"`
	Voltage         int               `json:"voltage"`
	LEDCount        int               `json:"led_count"`
	Wattage         float64           `json:"wattage"`
	DriverLabel     string            `json:"driver"`
	Price           float64           `json:"price"`
	DiscountPercent float64           `json:"discount_percent"`
}

func (r LineRequest) line(quoteID string) models.QuoteLine {
	return models.QuoteLine{
		QuoteID:         quoteID,
		Brand:           r.Brand,
		Length:          r.Length,
		LengthUnit:      r.LengthUnit,
		Voltage:         r.Voltage,
		LEDCount:        r.LEDCount,
		Wattage:         r.Wattage,
		DriverLabel:     r.DriverLabel,
		Price:           r.Price,
		DiscountPercent: r.DiscountPercent,
	}
}

// Handler serves the quotation API.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a quotation API handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes returns the handler's endpoints relative to /api/v1/quote.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: http.MethodGet, Path: "/quotes/{id}/lines", Handler: h.handleListLines},
		{Method: http.MethodPost, Path: "/quotes/{id}/lines", Handler: h.handleAddLine},
		{Method: http.MethodPut, Path: "/quotes/{id}/lines/{line}", Handler: h.handleUpdateLine},
		{Method: http.MethodDelete, Path: "/quotes/{id}/lines/{line}", Handler: h.handleDeleteLine},
		{Method: http.MethodDelete, Path: "/quotes/{id}", Handler: h.handleClear},
		{Method: http.MethodGet, Path: "/quotes/{id}/totals", Handler: h.handleTotals},
		{Method: http.MethodGet, Path: "/quotes/{id}/export.csv", Handler: h.handleExport},
	}
}

//	@Summary	List quote lines
//	@Tags		quote
//	@Produce	json
//	@Param		id path string true "Quote ID"
//	@Success	200 {array} models.QuoteLine
//	@Router		/quote/quotes/{id}/lines [get]
func (h *Handler) handleListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.Lines(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to list quote lines", zap.Error(err))
		server.InternalError(w, "failed to list quote lines", r.URL.Path)
		return
	}
	if lines == nil {
		lines = []models.QuoteLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

//	@Summary	Add a quote line
//	@Tags		quote
//	@Accept		json
//	@Produce	json
//	@Param		id path string true "Quote ID"
//	@Param		line body LineRequest true "Line"
//	@Success	201 {object} models.QuoteLine
//	@Failure	400 {object} server.Problem
//	@Router		/quote/quotes/{id}/lines [post]
func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	line := req.line(r.PathValue("id"))
	if err := h.svc.AddLine(r.Context(), &line); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

//	@Summary	Update a quote line
//	@Tags		quote
//	@Accept		json
//	@Produce	json
//	@Param		id path string true "Quote ID"
//	@Param		line path string true "Line ID"
//	@Success	200 {object} models.QuoteLine
//	@Failure	400 {object} server.Problem
//	@Failure	404 {object} server.Problem
//	@Router		/quote/quotes/{id}/lines/{line} [put]
func (h *Handler) handleUpdateLine(w http.ResponseWriter, r *http.Request) {
	var req LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	line := req.line(r.PathValue("id"))
	line.ID = r.PathValue("line")
	if err := h.svc.UpdateLine(r.Context(), &line); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

//	@Summary	Delete a quote line
//	@Tags		quote
//	@Param		id path string true "Quote ID"
//	@Param		line path string true "Line ID"
//	@Success	204
//	@Failure	404 {object} server.Problem
//	@Router		/quote/quotes/{id}/lines/{line} [delete]
func (h *Handler) handleDeleteLine(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLine(r.Context(), r.PathValue("id"), r.PathValue("line")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

//	@Summary	Clear a quote
//	@Tags		quote
//	@Param		id path string true "Quote ID"
//	@Success	200 {object} map[string]int
//	@Router		/quote/quotes/{id} [delete]
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Clear(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

//	@Summary	Quote totals
//	@Tags		quote
//	@Produce	json
//	@Param		id path string true "Quote ID"
//	@Success	200 {object} models.QuoteTotals
//	@Router		/quote/quotes/{id}/totals [get]
func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Totals(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

//	@Summary	Export a quote as CSV
//	@Tags		quote
//	@Produce	text/csv
//	@Param		id path string true "Quote ID"
//	@Success	200 {string} string
//	@Router		/quote/quotes/{id}/export.csv [get]
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lines, err := h.svc.Lines(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="quote-`+id+`.csv"`)
	if err := WriteCSV(w, lines); err != nil {
		h.logger.Warn("quote export interrupted", zap.String("quote", id), zap.Error(err))
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		server.NotFound(w, "quote line not found", r.URL.Path)
	case errors.Is(err, ErrInvalidDiscount), errors.Is(err, ErrInvalidLine):
		server.BadRequest(w, err.Error(), r.URL.Path)
	default:
		h.logger.Error("quote operation failed", zap.String("path", r.URL.Path), zap.Error(err))
		server.InternalError(w, "quote operation failed", r.URL.Path)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
