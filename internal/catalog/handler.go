package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/HerbHall/drivermatch/internal/plugin"
	"github.com/HerbHall/drivermatch/internal/selection"
	"github.com/HerbHall/drivermatch/internal/server"
	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/pkg/models"
	"go.uber.org/zap"
)

// DriversResponse is the response for GET /api/v1/catalog/drivers.
type DriversResponse struct {
	Source string              `json:"source"`
	Total  int                 `json:"total"`
	Items  []models.DriverUnit `json:"items"`
}

// OptionsResponse lists the input choices offered to the presentation layer.
type OptionsResponse struct {
	Voltages   []int    `json:"voltages"`
	LEDOptions []int    `json:"led_options"`
	Units      []string `json:"units"`
	Locations  []string `json:"locations"`
}

// Handler serves the catalog and recommendation API.
type Handler struct {
	engine  *Engine
	repo    services.DriverRepository
	options OptionsResponse
	logger  *zap.Logger
}

// NewHandler creates a catalog API handler. repo may be nil when the
// catalog is read-only; driver writes then answer 409.
func NewHandler(engine *Engine, repo services.DriverRepository, options OptionsResponse, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, repo: repo, options: options, logger: logger}
}

// Routes returns the handler's endpoints relative to /api/v1/catalog.
func (h *Handler) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: http.MethodGet, Path: "/drivers", Handler: h.handleListDrivers},
		{Method: http.MethodPost, Path: "/drivers", Handler: h.handleCreateDriver},
		{Method: http.MethodDelete, Path: "/drivers/{id}", Handler: h.handleDeleteDriver},
		{Method: http.MethodGet, Path: "/options", Handler: h.handleOptions},
		{Method: http.MethodPost, Path: "/recommendations", Handler: h.handleRecommend},
		{Method: http.MethodPost, Path: "/cache/invalidate", Handler: h.handleInvalidate},
	}
}

// handleListDrivers returns the normalized catalog for a location.
//
//	@Summary		List drivers
//	@Tags			catalog
//	@Produce		json
//	@Param			location query string false "Location tag, or both" default(both)
//	@Param			voltage query int false "Output voltage filter"
//	@Param			limit query int false "Page size, stored catalog only"
//	@Param			offset query int false "Page offset, stored catalog only"
//	@Param			sort query string false "name, voltage, wattage, price or created_at"
//	@Param			order query string false "asc or desc"
//	@Success		200 {object} DriversResponse
//	@Failure		400 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/drivers [get]
func (h *Handler) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location := q.Get("location")

	voltage := 0
	if v := q.Get("voltage"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			server.BadRequest(w, "voltage must be a positive integer", r.URL.Path)
			return
		}
		voltage = parsed
	}

	if h.repo != nil && (q.Has("limit") || q.Has("offset") || q.Has("sort")) {
		h.listDriverPage(w, r, services.DriverFilter{Location: location, Voltage: voltage})
		return
	}

	units, err := h.engine.Catalog(r.Context(), location)
	if err != nil {
		h.logger.Error("failed to load catalog", zap.Error(err))
		server.InternalError(w, "failed to load catalog", r.URL.Path)
		return
	}

	items := make([]models.DriverUnit, 0, len(units))
	for i := range units {
		if voltage == 0 || units[i].Voltage == voltage {
			items = append(items, units[i])
		}
	}

	writeJSON(w, http.StatusOK, DriversResponse{
		Source: h.engine.Source().Name(),
		Total:  len(items),
		Items:  items,
	})
}

// listDriverPage answers paged listings straight from the repository.
func (h *Handler) listDriverPage(w http.ResponseWriter, r *http.Request, filter services.DriverFilter) {
	q := r.URL.Query()
	opts := services.ListOptions{SortBy: q.Get("sort"), SortOrder: q.Get("order")}
	for key, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			server.BadRequest(w, key+" must be a non-negative integer", r.URL.Path)
			return
		}
		*dst = n
	}

	page, err := h.repo.List(r.Context(), filter, opts)
	if err != nil {
		h.logger.Error("failed to list drivers", zap.Error(err))
		server.InternalError(w, "failed to list drivers", r.URL.Path)
		return
	}
	for i := range page.Items {
		page.Items[i].TypeKey = selection.TypeKey(page.Items[i].Name)
	}
	writeJSON(w, http.StatusOK, DriversResponse{
		Source: h.engine.Source().Name(),
		Total:  page.Total,
		Items:  page.Items,
	})
}

type createDriverRequest struct {
	Name     string  `json:"name"`
	Voltage  int     `json:"voltage"`
	Wattage  float64 `json:"wattage"`
	Current  float64 `json:"current"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
}

// handleCreateDriver adds a driver to the stored catalog.
//
//	@Summary		Add a driver
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Success		201 {object} models.DriverUnit
//	@Failure		400 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Router			/catalog/drivers [post]
func (h *Handler) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		server.Conflict(w, fmt.Sprintf("catalog source %q is read-only", h.engine.Source().Name()), r.URL.Path)
		return
	}

	var req createDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if req.Voltage <= 0 || req.Wattage <= 0 {
		server.BadRequest(w, "voltage and wattage must be positive", r.URL.Path)
		return
	}
	if req.Current < 0 || req.Price < 0 {
		server.BadRequest(w, "current and price must not be negative", r.URL.Path)
		return
	}

	d := models.DriverUnit{
		Name:     req.Name,
		Voltage:  req.Voltage,
		Wattage:  req.Wattage,
		Current:  req.Current,
		Price:    req.Price,
		Location: req.Location,
	}
	if err := h.repo.Create(r.Context(), &d); err != nil {
		if errors.Is(err, services.ErrAlreadyExists) {
			server.Conflict(w, "driver already exists", r.URL.Path)
			return
		}
		h.logger.Error("failed to create driver", zap.Error(err))
		server.InternalError(w, "failed to create driver", r.URL.Path)
		return
	}
	d.TypeKey = selection.TypeKey(d.Name)
	h.engine.Invalidate()

	writeJSON(w, http.StatusCreated, d)
}

// handleDeleteDriver removes a driver from the stored catalog.
//
//	@Summary		Delete a driver
//	@Tags			catalog
//	@Param			id path string true "Driver ID"
//	@Success		204
//	@Failure		404 {object} server.Problem
//	@Failure		409 {object} server.Problem
//	@Router			/catalog/drivers/{id} [delete]
func (h *Handler) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		server.Conflict(w, fmt.Sprintf("catalog source %q is read-only", h.engine.Source().Name()), r.URL.Path)
		return
	}

	id := r.PathValue("id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "driver not found", r.URL.Path)
			return
		}
		h.logger.Error("failed to delete driver", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to delete driver", r.URL.Path)
		return
	}
	h.engine.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// handleOptions returns the selectable voltages, LED densities, units and
// location tags.
//
//	@Summary		Input options
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} OptionsResponse
//	@Router			/catalog/options [get]
func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.options)
}

// handleRecommend converts a strip run into a load and returns the ranked
// driver options.
//
//	@Summary		Recommend drivers
//	@Description	Returns single drivers and 2- or 3-driver combinations covering the run's load, ordered by surplus.
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request body RecommendRequest true "Strip run"
//	@Success		200 {object} Recommendation
//	@Failure		400 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/recommendations [post]
func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if req.Voltage <= 0 {
		server.BadRequest(w, "voltage must be positive", r.URL.Path)
		return
	}

	rec, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if IsInvalid(err) {
			server.BadRequest(w, err.Error(), r.URL.Path)
			return
		}
		h.logger.Error("recommendation failed", zap.Error(err))
		server.InternalError(w, "failed to compute recommendation", r.URL.Path)
		return
	}
	if rec.Options == nil {
		rec.Options = []selection.DisplayOption{}
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleInvalidate drops cached catalog snapshots.
//
//	@Summary		Invalidate catalog cache
//	@Tags			catalog
//	@Success		204
//	@Router			/catalog/cache/invalidate [post]
func (h *Handler) handleInvalidate(w http.ResponseWriter, _ *http.Request) {
	h.engine.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
