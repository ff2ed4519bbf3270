package quote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/drivermatch/internal/quote"
	"github.com/HerbHall/drivermatch/internal/server"
	"github.com/HerbHall/drivermatch/internal/services"
	"github.com/HerbHall/drivermatch/internal/testutil"
	"github.com/HerbHall/drivermatch/pkg/models"
	"go.uber.org/zap"
)

func setupQuoteMux(t *testing.T) *http.ServeMux {
	t.Helper()
	repo, err := services.NewSQLiteQuoteRepository(context.Background(), testutil.NewStore(t))
	if err != nil {
		t.Fatalf("NewSQLiteQuoteRepository: %v", err)
	}
	h := quote.NewHandler(quote.NewService(repo), zap.NewNop())
	mux := http.NewServeMux()
	for _, r := range h.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/quote"+r.Path, r.Handler)
	}
	return mux
}

func doRequest(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func addLine(t *testing.T, mux *http.ServeMux, body map[string]any) models.QuoteLine {
	t.Helper()
	w := doRequest(mux, http.MethodPost, "/api/v1/quote/quotes/q1/lines", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var line models.QuoteLine
	if err := json.NewDecoder(w.Body).Decode(&line); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	return line
}

func TestHandleQuoteLifecycle(t *testing.T) {
	mux := setupQuoteMux(t)

	first := addLine(t, mux, map[string]any{
		"brand": "Lumen", "length": 5, "led_count": 120, "voltage": 12,
		"driver": "Slim SMPS (100W)", "price": 450, "discount_percent": 10,
	})
	if first.Wattage != 60 || first.Position != 1 {
		t.Errorf("first line = %+v, want 60W at position 1", first)
	}
	second := addLine(t, mux, map[string]any{
		"brand": "Glow", "length": 2, "led_count": 60, "voltage": 24, "price": 200,
	})

	w := doRequest(mux, http.MethodGet, "/api/v1/quote/quotes/q1/lines", nil)
	var lines []models.QuoteLine
	if err := json.NewDecoder(w.Body).Decode(&lines); err != nil {
		t.Fatalf("decode lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	w = doRequest(mux, http.MethodPut, "/api/v1/quote/quotes/q1/lines/"+second.ID, map[string]any{
		"brand": "Glow", "length": 2, "led_count": 60, "voltage": 24, "price": 200, "discount_percent": 50,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	w = doRequest(mux, http.MethodGet, "/api/v1/quote/quotes/q1/totals", nil)
	var totals models.QuoteTotals
	if err := json.NewDecoder(w.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.Gross != 650 || totals.Net != 505 || totals.Discount != 145 {
		t.Errorf("totals = %+v, want gross 650 net 505 discount 145", totals)
	}

	w = doRequest(mux, http.MethodGet, "/api/v1/quote/quotes/q1/export.csv", nil)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if rows := strings.Split(strings.TrimSpace(w.Body.String()), "\n"); len(rows) != 3 {
		t.Errorf("csv rows = %d, want 3", len(rows))
	}

	w = doRequest(mux, http.MethodDelete, "/api/v1/quote/quotes/q1/lines/"+first.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doRequest(mux, http.MethodDelete, "/api/v1/quote/quotes/q1", nil)
	var cleared map[string]int
	_ = json.NewDecoder(w.Body).Decode(&cleared)
	if cleared["removed"] != 1 {
		t.Errorf("removed = %d, want 1", cleared["removed"])
	}
}

func TestHandleQuote_Errors(t *testing.T) {
	mux := setupQuoteMux(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantType string
	}{
		{"bad discount", http.MethodPost, "/api/v1/quote/quotes/q1/lines",
			map[string]any{"wattage": 60, "price": 10, "discount_percent": 120},
			http.StatusBadRequest, server.ProblemTypeBadRequest},
		{"negative price", http.MethodPost, "/api/v1/quote/quotes/q1/lines",
			map[string]any{"wattage": 60, "price": -10},
			http.StatusBadRequest, server.ProblemTypeBadRequest},
		{"not json", http.MethodPost, "/api/v1/quote/quotes/q1/lines", "{",
			http.StatusBadRequest, server.ProblemTypeBadRequest},
		{"update missing", http.MethodPut, "/api/v1/quote/quotes/q1/lines/nope",
			map[string]any{"wattage": 60},
			http.StatusNotFound, server.ProblemTypeNotFound},
		{"delete missing", http.MethodDelete, "/api/v1/quote/quotes/q1/lines/nope", nil,
			http.StatusNotFound, server.ProblemTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(mux, tt.method, tt.path, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			var p server.Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("problem type = %q, want %q", p.Type, tt.wantType)
			}
		})
	}
}

func TestHandleTotals_EmptyQuote(t *testing.T) {
	mux := setupQuoteMux(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/quote/quotes/none/totals", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var totals models.QuoteTotals
	if err := json.NewDecoder(w.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.Lines != 0 || totals.Net != 0 {
		t.Errorf("totals = %+v, want zero", totals)
	}
}

func TestModule_Lifecycle(t *testing.T) {
	m := quote.NewModule(testutil.NewStore(t))
	if err := m.Init(nil, zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if m.Name() != "quote" {
		t.Errorf("Name() = %q, want quote", m.Name())
	}
	if len(m.Routes()) != 7 {
		t.Errorf("Routes() = %d, want 7", len(m.Routes()))
	}
	if h := m.Health(context.Background()); h.Status != "healthy" {
		t.Errorf("Health() = %q, want healthy", h.Status)
	}
	if m.Service() == nil {
		t.Error("Service() is nil after Init")
	}
}

func TestModule_InitWithoutStore(t *testing.T) {
	if err := quote.NewModule(nil).Init(nil, zap.NewNop()); err == nil {
		t.Error("Init() error = nil, want error")
	}
}
