package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "egxcli/internal/errors"
	"egxcli/internal/exporter"
	"egxcli/internal/files"
	"egxcli/internal/middleware"
	"egxcli/internal/services"
)

// Response formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var formats = []string{FormatJSON, FormatCSV}

type symbolKey struct{}

// SignalsHandler serves the session analytics
type SignalsHandler struct {
	service      SignalServiceInterface
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewSignalsHandler creates a new signals handler
func NewSignalsHandler(service SignalServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SignalsHandler {
	return &SignalsHandler{
		service:      service,
		validator:    middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "signals_handler")),
	}
}

// Routes returns the signal routes
func (h *SignalsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetSignals)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/overview", h.GetOverview)
	r.Get("/breakouts", h.GetBreakouts)
	r.Get("/candidates", h.GetCandidates)
	r.Get("/relationships", h.GetRelationships)
	r.Get("/search", h.Search)

	r.With(h.validator.ValidateRequest, middleware.ContentTypeValidator(h.errorHandler, "application/json")).
		Post("/group-picks", h.PostGroupPicks)

	r.Route("/stocks/{symbol}", func(r chi.Router) {
		r.Use(h.SymbolCtx)
		r.Get("/", h.GetStock)
		r.Get("/technicals", h.GetTechnicals)
	})

	return r
}

// SymbolCtx validates the symbol path parameter and stores it in the
// request context.
func (h *SignalsHandler) SymbolCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")
		if err := h.validator.ValidateVar("symbol", symbol, "required,symbol"); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), symbolKey{}, symbol)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func symbolFrom(r *http.Request) string {
	s, _ := r.Context().Value(symbolKey{}).(string)
	return s
}

// fail logs a failed service call and writes the problem response.
func (h *SignalsHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.DebugContext(r.Context(), "request failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))
	h.errorHandler.HandleError(w, r, err)
}

func (h *SignalsHandler) success(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// writeCSV streams t as an attachment. Headers are committed before the
// body, so a write failure can only be logged.
func (h *SignalsHandler) writeCSV(w http.ResponseWriter, r *http.Request, name string, t exporter.Table) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := exporter.WriteTable(w, t, true); err != nil {
		h.logger.WarnContext(r.Context(), "csv download interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

// GetSignals handles GET /signals
func (h *SignalsHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", formats, FormatJSON)
	if !ok {
		return
	}

	rows, err := h.service.Signals(r.Context())
	if err != nil {
		h.fail(w, r, "signals", err)
		return
	}
	if format == FormatCSV {
		h.writeCSV(w, r, exporter.SignalsFile, exporter.SignalsTable(rows))
		return
	}
	h.success(w, r, rows, len(rows))
}

// SnapshotInfo describes the files the current analytics come from.
type SnapshotInfo struct {
	Intraday     files.FileInfo  `json:"intraday"`
	Transactions *files.FileInfo `json:"transactions,omitempty"`
	LoadedAt     time.Time       `json:"loaded_at"`
	Rows         int             `json:"rows"`
	SignalRows   int             `json:"signal_rows"`
	HasSignals   bool            `json:"has_signals"`
	Columns      []string        `json:"columns"`
}

// GetSnapshot handles GET /signals/snapshot
func (h *SignalsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, "snapshot", err)
		return
	}
	render.JSON(w, r, SnapshotInfo{
		Intraday:     snap.Key.Intraday,
		Transactions: snap.Key.Transactions,
		LoadedAt:     snap.LoadedAt,
		Rows:         len(snap.Day.Intraday.Rows),
		SignalRows:   len(snap.Day.Signals.Rows),
		HasSignals:   snap.Day.HasSignals(),
		Columns:      snap.Day.Intraday.Columns,
	})
}

// GetOverview handles GET /signals/overview?limit=
func (h *SignalsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, 100, 0)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "overview", err)
		return
	}
	h.success(w, r, overview, overview.Stocks)
}

// GetBreakouts handles GET /signals/breakouts
func (h *SignalsHandler) GetBreakouts(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", formats, FormatJSON)
	if !ok {
		return
	}

	b, err := h.service.Breakouts(r.Context())
	if err != nil {
		h.fail(w, r, "breakouts", err)
		return
	}
	if format == FormatCSV {
		h.writeCSV(w, r, exporter.BreakoutsFile, exporter.BreakoutsTable(b))
		return
	}
	h.success(w, r, b, b.Total())
}

// GetCandidates handles GET /signals/candidates?top=
func (h *SignalsHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	top, ok := h.query.ValidateInt(w, r, "top", 1, 100, 0)
	if !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", formats, FormatJSON)
	if !ok {
		return
	}

	cs, err := h.service.Candidates(r.Context(), top)
	if err != nil {
		h.fail(w, r, "candidates", err)
		return
	}
	if format == FormatCSV {
		h.writeCSV(w, r, exporter.CandidatesFile, exporter.CandidatesTable(cs))
		return
	}
	h.success(w, r, cs, len(cs))
}

// GetRelationships handles GET /signals/relationships. min_days,
// min_abs_corr and top_n override the configured scan parameters.
func (h *SignalsHandler) GetRelationships(w http.ResponseWriter, r *http.Request) {
	params := h.service.CorrelationParams()

	var ok bool
	if params.MinDays, ok = h.query.ValidateInt(w, r, "min_days", 2, 5000, params.MinDays); !ok {
		return
	}
	if params.MinAbsCorr, ok = h.query.ValidateFloat(w, r, "min_abs_corr", 0, 1, params.MinAbsCorr); !ok {
		return
	}
	if params.TopN, ok = h.query.ValidateInt(w, r, "top_n", 2, 1000, params.TopN); !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", formats, FormatJSON)
	if !ok {
		return
	}

	pairs, err := h.service.Relationships(r.Context(), params)
	if err != nil {
		h.fail(w, r, "relationships", err)
		return
	}
	if format == FormatCSV {
		h.writeCSV(w, r, exporter.RelationshipsFile, exporter.RelationshipsTable(pairs))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   pairs,
		"count":  len(pairs),
		"params": params,
	})
}

// GroupPicksRequest is the body of POST /signals/group-picks. Symbols is
// free text separated by commas, semicolons or whitespace.
type GroupPicksRequest struct {
	Symbols string `json:"symbols" validate:"required,max=8192"`
	Format  string `json:"format" validate:"omitempty,oneof=json csv"`
}

// PostGroupPicks handles POST /signals/group-picks
func (h *SignalsHandler) PostGroupPicks(w http.ResponseWriter, r *http.Request) {
	var req GroupPicksRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	picks, err := h.service.GroupPicks(r.Context(), req.Symbols)
	if err != nil {
		h.fail(w, r, "group_picks", err)
		return
	}
	if req.Format == FormatCSV {
		h.writeCSV(w, r, exporter.GroupPicksFile, exporter.GroupPicksTable(picks))
		return
	}
	h.success(w, r, picks, len(picks))
}

// Search handles GET /signals/search?q=
func (h *SignalsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := h.validator.ValidateVar("q", q, "max=64"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	symbols, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, "search", err)
		return
	}
	h.success(w, r, symbols, len(symbols))
}

// GetStock handles GET /signals/stocks/{symbol}
func (h *SignalsHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := symbolFrom(r)
	analysis, err := h.service.StockAnalysis(r.Context(), symbol)
	if errors.Is(err, services.ErrSymbolNotFound) {
		err = fmt.Errorf("%w: %w", apierrors.SymbolNotFoundError(symbol), err)
	}
	if err != nil {
		h.fail(w, r, "stock_analysis", err)
		return
	}
	render.JSON(w, r, analysis)
}

// GetTechnicals handles GET /signals/stocks/{symbol}/technicals
func (h *SignalsHandler) GetTechnicals(w http.ResponseWriter, r *http.Request) {
	symbol := symbolFrom(r)
	tech, err := h.service.Technicals(r.Context(), symbol)
	if errors.Is(err, services.ErrNoHistory) {
		err = fmt.Errorf("%w: %w", apierrors.NotFoundError("history for "+symbol), err)
	}
	if err != nil {
		h.fail(w, r, "technicals", err)
		return
	}
	render.JSON(w, r, tech)
}
