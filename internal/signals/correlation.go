package signals

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"egxcli/pkg/contracts/domain"
)

// Correlation defaults.
const (
	DefaultMinDays    = 60
	DefaultMinAbsCorr = 0.7
	DefaultTopN       = 40
)

// HistoryLoader supplies a symbol's historical daily bars.
type HistoryLoader interface {
	LoadHistory(ctx context.Context, symbol string) (domain.HistorySeries, error)
}

// CorrelationParams bounds a relationship scan.
type CorrelationParams struct {
	MinDays    int     `json:"min_days"`
	MinAbsCorr float64 `json:"min_abs_corr"`
	TopN       int     `json:"top_n"`
}

// DefaultCorrelationParams returns the standard scan parameters.
func DefaultCorrelationParams() CorrelationParams {
	return CorrelationParams{
		MinDays:    DefaultMinDays,
		MinAbsCorr: DefaultMinAbsCorr,
		TopN:       DefaultTopN,
	}
}

// CorrelationEngine finds strongly co-moving symbols from daily returns.
type CorrelationEngine struct {
	history HistoryLoader
	logger  *slog.Logger
}

// NewCorrelationEngine creates an engine reading history through loader.
func NewCorrelationEngine(loader HistoryLoader, logger *slog.Logger) *CorrelationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorrelationEngine{
		history: loader,
		logger:  logger.With(slog.String("component", "correlation")),
	}
}

// returnSeries maps trading dates to simple daily returns.
type returnSeries struct {
	symbol  string
	returns map[time.Time]float64
}

// Universe returns up to topN unique symbols ordered by intraday volume,
// highest first. Missing volume counts as zero.
func Universe(snap domain.IntradaySnapshot, topN int) []string {
	rows := make([]domain.IntradayRow, len(snap.Rows))
	copy(rows, snap.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Volume.Or(0) > rows[j].Volume.Or(0)
	})

	if topN <= 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, topN)
	for _, r := range rows {
		if len(out) >= topN {
			break
		}
		if r.Symbol == "" {
			continue
		}
		if _, dup := seen[r.Symbol]; dup {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r.Symbol)
	}
	return out
}

// DailyReturns computes close-to-close simple returns keyed by calendar day.
// Bars without a date are dropped, the rest are sorted by day and only the
// first bar of a repeated day is kept. The first bar has no return. A return is
// missing when either close is missing. ok is false when the series has no
// close column.
func DailyReturns(series domain.HistorySeries) (map[time.Time]float64, bool) {
	if !series.HasClose() {
		return nil, false
	}

	bars := sortedBars(series)
	out := make(map[time.Time]float64, len(bars))
	var prev domain.Num
	for i, b := range bars {
		if _, dup := out[b.Date]; dup {
			continue
		}
		ret := math.NaN()
		if i > 0 && prev.Valid() && b.Close.Valid() && prev.Float() != 0 {
			ret = b.Close.Float()/prev.Float() - 1
		}
		out[b.Date] = ret
		prev = b.Close
	}
	return out, true
}

// BuildRelationships reports symbol pairs whose daily returns correlate at
// or beyond params.MinAbsCorr in absolute value.
//
// Returns are aligned on the dates shared by every loaded symbol, and dates
// where every return is missing are dropped. Fewer than params.MinDays
// aligned dates yields an empty result. Symbols whose history cannot be
// loaded are skipped.
func (e *CorrelationEngine) BuildRelationships(ctx context.Context, snap domain.IntradaySnapshot, params CorrelationParams) ([]domain.CorrelationPair, error) {
	pairs := []domain.CorrelationPair{}
	if snap.Empty() {
		return pairs, nil
	}

	symbols := Universe(snap, params.TopN)
	series := make([]returnSeries, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hist, err := e.history.LoadHistory(ctx, sym)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping symbol without history",
				slog.String("symbol", sym),
				slog.String("error", err.Error()))
			continue
		}
		if len(hist.Bars) == 0 {
			continue
		}
		rets, ok := DailyReturns(hist)
		if !ok {
			e.logger.WarnContext(ctx, "skipping symbol without close column",
				slog.String("symbol", sym))
			continue
		}
		series = append(series, returnSeries{symbol: sym, returns: rets})
	}
	if len(series) == 0 {
		return pairs, nil
	}

	dates := alignDates(series)
	if len(dates) < params.MinDays {
		e.logger.InfoContext(ctx, "not enough aligned history for correlation",
			slog.Int("aligned_days", len(dates)),
			slog.Int("min_days", params.MinDays),
			slog.Int("symbols", len(series)))
		return pairs, nil
	}

	matrix := make([][]float64, len(series))
	for i, s := range series {
		col := make([]float64, len(dates))
		for d, date := range dates {
			col[d] = s.returns[date]
		}
		matrix[i] = col
	}

	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			c := pearson(matrix[i], matrix[j])
			if math.IsNaN(c) || math.Abs(c) < params.MinAbsCorr {
				continue
			}
			rel := domain.RelationNegative
			if c > 0 {
				rel = domain.RelationPositive
			}
			pairs = append(pairs, domain.CorrelationPair{
				SymbolA:  series[i].symbol,
				SymbolB:  series[j].symbol,
				Corr:     c,
				Relation: rel,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Corr) > math.Abs(pairs[j].Corr)
	})

	e.logger.InfoContext(ctx, "correlation scan complete",
		slog.Int("symbols", len(series)),
		slog.Int("aligned_days", len(dates)),
		slog.Int("pairs", len(pairs)))
	return pairs, nil
}

// alignDates returns, in ascending order, the dates present in every series
// on which at least one series has a return.
func alignDates(series []returnSeries) []time.Time {
	var dates []time.Time
	for date := range series[0].returns {
		inAll := true
		anyValue := false
		for _, s := range series {
			r, ok := s.returns[date]
			if !ok {
				inAll = false
				break
			}
			if !math.IsNaN(r) {
				anyValue = true
			}
		}
		if inAll && anyValue {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
