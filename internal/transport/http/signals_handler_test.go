package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "egxcli/internal/errors"
	"egxcli/internal/files"
	"egxcli/internal/services"
	"egxcli/internal/signals"
	"egxcli/pkg/contracts/domain"
)

// MockSignalService is a mock implementation of SignalServiceInterface
type MockSignalService struct {
	mock.Mock
}

func (m *MockSignalService) Snapshot(ctx context.Context) (*services.Snapshot, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Snapshot), args.Error(1)
}

func (m *MockSignalService) Overview(ctx context.Context, n int) (signals.Overview, error) {
	args := m.Called(n)
	return args.Get(0).(signals.Overview), args.Error(1)
}

func (m *MockSignalService) Signals(ctx context.Context) ([]domain.SignalRow, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SignalRow), args.Error(1)
}

func (m *MockSignalService) Breakouts(ctx context.Context) (signals.Breakouts, error) {
	args := m.Called()
	return args.Get(0).(signals.Breakouts), args.Error(1)
}

func (m *MockSignalService) Candidates(ctx context.Context, n int) ([]signals.Candidate, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]signals.Candidate), args.Error(1)
}

func (m *MockSignalService) CorrelationParams() signals.CorrelationParams {
	return signals.CorrelationParams{MinDays: 60, MinAbsCorr: 0.7, TopN: 40}
}

func (m *MockSignalService) Relationships(ctx context.Context, params signals.CorrelationParams) ([]domain.CorrelationPair, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrelationPair), args.Error(1)
}

func (m *MockSignalService) GroupPicks(ctx context.Context, text string) ([]signals.GroupPick, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]signals.GroupPick), args.Error(1)
}

func (m *MockSignalService) Search(ctx context.Context, query string) ([]string, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSignalService) Technicals(ctx context.Context, symbol string) (signals.Technicals, error) {
	args := m.Called(symbol)
	return args.Get(0).(signals.Technicals), args.Error(1)
}

func (m *MockSignalService) StockAnalysis(ctx context.Context, symbol string) (signals.StockAnalysis, error) {
	args := m.Called(symbol)
	return args.Get(0).(signals.StockAnalysis), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRouter(svc SignalServiceInterface) http.Handler {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	r := chi.NewRouter()
	r.Mount("/signals", NewSignalsHandler(svc, testLogger(), errorHandler).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func sampleRows() []domain.SignalRow {
	return []domain.SignalRow{
		{IntradayRow: domain.IntradayRow{Symbol: "COMI", Description: "CIB", Last: 111}, BuyRatio: 0.8, AIProb: 0.74, Behavior: domain.BehaviorAccumulation},
		{IntradayRow: domain.IntradayRow{Symbol: "HRHO", Description: "EFG", Last: 20}, BuyRatio: 0.1, AIProb: 0.3},
	}
}

func TestSignalsHandler_GetSignals(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		setupMock    func(*MockSignalService)
		expectedCode int
		check        func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:         "json",
			setupMock:    func(m *MockSignalService) { m.On("Signals").Return(sampleRows(), nil) },
			expectedCode: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody(t, w)
				assert.Equal(t, "success", body["status"])
				assert.Equal(t, float64(2), body["count"])
			},
		},
		{
			name:         "csv download",
			query:        "?format=CSV",
			setupMock:    func(m *MockSignalService) { m.On("Signals").Return(sampleRows(), nil) },
			expectedCode: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
				assert.Contains(t, w.Header().Get("Content-Disposition"), "signals.csv")
				assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
				assert.Contains(t, w.Body.String(), "COMI,CIB,111")
			},
		},
		{
			name:         "bad format",
			query:        "?format=xml",
			setupMock:    func(m *MockSignalService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "no transactions",
			setupMock: func(m *MockSignalService) {
				m.On("Signals").Return(nil, apierrors.NewNoDataError("no transaction file", services.ErrNoSignals))
			},
			expectedCode: http.StatusNotFound,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody(t, w)
				assert.Equal(t, apierrors.TypeNoData, body["type"])
				assert.Equal(t, string(apierrors.ErrTypeNoData), body["error_code"])
			},
		},
		{
			name: "unexpected failure",
			setupMock: func(m *MockSignalService) {
				m.On("Signals").Return(nil, errors.New("boom"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSignalService)
			tt.setupMock(svc)

			w := do(t, newTestRouter(svc), http.MethodGet, "/signals"+tt.query, "")
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSignalsHandler_GetOverview(t *testing.T) {
	svc := new(MockSignalService)
	svc.On("Overview", 0).Return(signals.Overview{Stocks: 3}, nil)
	svc.On("Overview", 5).Return(signals.Overview{Stocks: 3}, nil)
	h := newTestRouter(svc)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/signals/overview", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/signals/overview?limit=5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/signals/overview?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/signals/overview?limit=ten", "").Code)
	svc.AssertExpectations(t)
}

func TestSignalsHandler_GetSnapshot(t *testing.T) {
	svc := new(MockSignalService)
	loaded := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	svc.On("Snapshot").Return(&services.Snapshot{
		Key: services.SnapshotKey{Intraday: files.FileInfo{Name: "day.xlsx"}},
		Day: signals.Day{
			Intraday:    domain.IntradaySnapshot{Rows: make([]domain.IntradayRow, 3), Columns: domain.ColumnSet{domain.ColSymbol}},
			HasIntraday: true,
		},
		LoadedAt: loaded,
	}, nil)

	w := do(t, newTestRouter(svc), http.MethodGet, "/signals/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info SnapshotInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "day.xlsx", info.Intraday.Name)
	assert.Nil(t, info.Transactions)
	assert.Equal(t, 3, info.Rows)
	assert.False(t, info.HasSignals)
	assert.True(t, loaded.Equal(info.LoadedAt))
}

func TestSignalsHandler_GetCandidatesAndBreakouts(t *testing.T) {
	svc := new(MockSignalService)
	svc.On("Candidates", 3).Return([]signals.Candidate{{Symbol: "A", Score: 99}}, nil)
	svc.On("Breakouts").Return(signals.Breakouts{R1: []signals.BreakoutRow{{Symbol: "UP"}}}, nil)
	h := newTestRouter(svc)

	w := do(t, h, http.MethodGet, "/signals/candidates?top=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])

	w = do(t, h, http.MethodGet, "/signals/breakouts?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "R1,UP")
	svc.AssertExpectations(t)
}

func TestSignalsHandler_GetRelationships(t *testing.T) {
	svc := new(MockSignalService)
	svc.On("Relationships", signals.CorrelationParams{MinDays: 30, MinAbsCorr: 0.5, TopN: 40}).
		Return([]domain.CorrelationPair{{SymbolA: "AAA", SymbolB: "BBB", Corr: 0.9, Relation: domain.RelationPositive}}, nil)
	h := newTestRouter(svc)

	w := do(t, h, http.MethodGet, "/signals/relationships?min_days=30&min_abs_corr=0.5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/signals/relationships?min_abs_corr=1.5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/signals/relationships?min_abs_corr=NaN", "").Code)
	svc.AssertExpectations(t)
}

func TestSignalsHandler_PostGroupPicks(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupMock    func(*MockSignalService)
		expectedCode int
	}{
		{
			name: "valid",
			body: `{"symbols": "COMI, HRHO"}`,
			setupMock: func(m *MockSignalService) {
				m.On("GroupPicks", "COMI, HRHO").Return([]signals.GroupPick{{Symbol: "COMI"}}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{name: "missing symbols", body: `{"symbols": ""}`, setupMock: func(*MockSignalService) {}, expectedCode: http.StatusBadRequest},
		{name: "bad format", body: `{"symbols": "COMI", "format": "xml"}`, setupMock: func(*MockSignalService) {}, expectedCode: http.StatusBadRequest},
		{name: "invalid json", body: `{"symbols":`, setupMock: func(*MockSignalService) {}, expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSignalService)
			tt.setupMock(svc)
			w := do(t, newTestRouter(svc), http.MethodPost, "/signals/group-picks", tt.body)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestSignalsHandler_GroupPicksNeedsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signals/group-picks", strings.NewReader("symbols=COMI"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	newTestRouter(new(MockSignalService)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestSignalsHandler_Stocks(t *testing.T) {
	svc := new(MockSignalService)
	svc.On("StockAnalysis", "COMI").Return(signals.StockAnalysis{Symbol: "COMI", Trend: signals.TrendUp}, nil)
	svc.On("StockAnalysis", "NOPE").Return(signals.StockAnalysis{},
		apierrors.NewAppError(apierrors.ErrTypeNotFound, "symbol NOPE not found", services.ErrSymbolNotFound))
	svc.On("Technicals", "COMI").Return(signals.Technicals{},
		apierrors.NewMissingColumnError(domain.ColClosed, signals.ErrMissingCloseColumn))
	svc.On("Technicals", "HRHO").Return(signals.Technicals{},
		apierrors.NewAppError(apierrors.ErrTypeNotFound, "no history file for HRHO", services.ErrNoHistory))
	h := newTestRouter(svc)

	w := do(t, h, http.MethodGet, "/signals/stocks/COMI", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMI", decodeBody(t, w)["symbol"])

	w = do(t, h, http.MethodGet, "/signals/stocks/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apierrors.TypeSymbolNotFound, body["type"])
	assert.Equal(t, apierrors.CodeSymbolNotFound, body["error_code"])
	assert.Equal(t, "NOPE", body["details"])

	w = do(t, h, http.MethodGet, "/signals/stocks/HRHO/technicals", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
	assert.Equal(t, apierrors.CodeNotFound, body["error_code"])
	assert.Equal(t, "history for HRHO not found", body["detail"])

	w = do(t, h, http.MethodGet, "/signals/stocks/COMI/technicals", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.ColClosed, decodeBody(t, w)["column"])

	w = do(t, h, http.MethodGet, "/signals/stocks/"+strings.Repeat("X", 30), "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "symbol too long")
	svc.AssertExpectations(t)
}

func TestSignalsHandler_Search(t *testing.T) {
	svc := new(MockSignalService)
	svc.On("Search", "bank").Return([]string{"COMI"}, nil)
	h := newTestRouter(svc)

	w := do(t, h, http.MethodGet, "/signals/search?q=bank", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"COMI"}, decodeBody(t, w)["data"])

	w = do(t, h, http.MethodGet, "/signals/search?q="+strings.Repeat("a", 65), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
