package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewErrorHandler(logger, includeStack), &buf
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{"deadline exceeded", fmt.Errorf("correlation: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, TypeTimeout, ""},
		{"canceled", context.Canceled, http.StatusGatewayTimeout, TypeTimeout, ""},
		{"api error", ErrInvalidParameter, http.StatusBadRequest, TypeValidation, CodeInvalidParameter},
		{"wrapped api error", fmt.Errorf("lookup: %w", SymbolNotFoundError("XYZ")), http.StatusNotFound, TypeSymbolNotFound, CodeSymbolNotFound},
		{"no data", NewNoDataError("no intraday file in data/intraday", nil), http.StatusNotFound, TypeNoData, "NO_DATA"},
		{"missing column", NewMissingColumnError("Closed", nil), http.StatusUnprocessableEntity, TypeMissingColumn, "MISSING_COLUMN"},
		{"parsing", NewParsingError("bad workbook", errors.New("zip")), http.StatusUnprocessableEntity, TypeDataCorrupted, "PARSING"},
		{"cache", NewCacheError("redis get", errors.New("refused")), http.StatusInternalServerError, TypeStorage, "CACHE"},
		{"plain error", errors.New("something not found"), http.StatusInternalServerError, TypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(false)
			req := httptest.NewRequest(http.MethodGet, "/api/signals", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/signals", body["instance"])
			assert.Contains(t, body, "trace_id")
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h, logs := newTestHandler(false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, logs.Len())
}

func TestErrorHandler_LogLevelFollowsStatus(t *testing.T) {
	h, logs := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)

	h.HandleError(httptest.NewRecorder(), req, ErrInvalidParameter)
	assert.Contains(t, logs.String(), `"level":"WARN"`)

	logs.Reset()
	h.HandleError(httptest.NewRecorder(), req, errors.New("boom"))
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h, _ := newTestHandler(false)
	err := NewMissingColumnError("Closed", nil).WithContext("symbol", "COMI")

	p := h.ErrorToProblem(err, httptest.NewRequest(http.MethodGet, "/api/stocks/COMI", nil))
	assert.Equal(t, "Closed", p.Extensions["column"])
	assert.Equal(t, "COMI", p.Extensions["symbol"])
	assert.Equal(t, "MISSING_COLUMN", p.Extensions["error_code"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h, _ := newTestHandler(true)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Contains(t, decodeProblem(t, rec), "stack")

	rec = httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), ErrInvalidParameter)
	assert.NotContains(t, decodeProblem(t, rec), "stack", "client errors carry no stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	h, logs := newTestHandler(true)
	rec := httptest.NewRecorder()
	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "nil map", body["panic"])
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestErrorHandler_RouterFallbacks(t *testing.T) {
	h, _ := newTestHandler(false)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Get("/api/signals", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decodeProblem(t, rec)["trace_id"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/signals", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, TypeMethod, decodeProblem(t, rec)["type"])
}
