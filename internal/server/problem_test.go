package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "driver xyz not found",
		Instance: "/api/v1/catalog/drivers/xyz",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q, want %q", ct, "application/problem+json")
	}

	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   "driver xyz not found",
		Instance: "/api/v1/catalog/drivers/xyz",
	}
	if p != want {
		t.Errorf("problem = %+v, want %+v", p, want)
	}
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, string, string)
		wantStatus int
		wantType   string
	}{
		{"not found", NotFound, http.StatusNotFound, ProblemTypeNotFound},
		{"bad request", BadRequest, http.StatusBadRequest, ProblemTypeBadRequest},
		{"internal", InternalError, http.StatusInternalServerError, ProblemTypeInternal},
		{"rate limited", RateLimited, http.StatusTooManyRequests, ProblemTypeRateLimited},
		{"conflict", Conflict, http.StatusConflict, ProblemTypeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "detail", "/api/v1/quote/quotes/q1")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var p Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if p.Status != tt.wantStatus || p.Instance != "/api/v1/quote/quotes/q1" {
				t.Errorf("problem = %+v", p)
			}
		})
	}
}

func TestWriteProblem_OmitsEmptyOptionalFields(t *testing.T) {
	w := httptest.NewRecorder()

	WriteProblem(w, Problem{Type: ProblemTypeInternal, Title: "Internal Server Error", Status: 500})

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, key := range []string{"detail", "instance"} {
		if _, ok := raw[key]; ok {
			t.Errorf("%s present, want omitted when empty", key)
		}
	}
}
