package signals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"egxcli/internal/dataprocessing"
	"egxcli/pkg/contracts/domain"
)

// Day is everything derived from one session's intraday and transaction files.
type Day struct {
	Intraday     domain.IntradaySnapshot       `json:"intraday"`
	Transactions domain.TransactionLog         `json:"transactions"`
	Aggregates   []domain.TransactionAggregate `json:"aggregates"`
	Signals      domain.SignalTable            `json:"signals"`
	HasIntraday  bool                          `json:"has_intraday"`
	HasTxLog     bool                          `json:"has_transactions"`
}

// HasSignals reports whether a signal table was built.
func (d Day) HasSignals() bool {
	return d.HasIntraday && d.HasTxLog
}

// StageObserver receives the duration of each pipeline stage.
type StageObserver func(ctx context.Context, stage string, d time.Duration)

// Pipeline wires the readers to the analytics.
type Pipeline struct {
	loader  *dataprocessing.Loader
	logger  *slog.Logger
	observe StageObserver
}

// NewPipeline creates a pipeline. observe may be nil.
func NewPipeline(loader *dataprocessing.Loader, logger *slog.Logger, observe StageObserver) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if observe == nil {
		observe = func(context.Context, string, time.Duration) {}
	}
	return &Pipeline{
		loader:  loader,
		logger:  logger.With(slog.String("component", "pipeline")),
		observe: observe,
	}
}

func (p *Pipeline) timed(ctx context.Context, stage string) func() {
	start := time.Now()
	return func() { p.observe(ctx, stage, time.Since(start)) }
}

// LoadIntraday reads an intraday workbook and fills missing pivot levels.
func (p *Pipeline) LoadIntraday(ctx context.Context, path string) (domain.IntradaySnapshot, error) {
	done := p.timed(ctx, "load_intraday")
	snap, err := p.loader.LoadIntraday(ctx, path)
	done()
	if err != nil {
		return domain.IntradaySnapshot{}, err
	}

	done = p.timed(ctx, "pivot_levels")
	defer done()
	return AddPivotLevels(snap), nil
}

// LoadTransactions reads a session transaction log.
func (p *Pipeline) LoadTransactions(ctx context.Context, path string) (domain.TransactionLog, error) {
	defer p.timed(ctx, "load_transactions")()
	return p.loader.LoadTransactions(ctx, path)
}

// BuildSignalsForDay loads both files and produces the scored signal table.
func (p *Pipeline) BuildSignalsForDay(ctx context.Context, intradayPath, txPath string) (domain.SignalTable, error) {
	snap, err := p.LoadIntraday(ctx, intradayPath)
	if err != nil {
		return domain.SignalTable{}, err
	}
	txLog, err := p.LoadTransactions(ctx, txPath)
	if err != nil {
		return domain.SignalTable{}, err
	}
	_, table := p.signalsFrom(ctx, snap, txLog)
	return table, nil
}

func (p *Pipeline) signalsFrom(ctx context.Context, snap domain.IntradaySnapshot, txLog domain.TransactionLog) ([]domain.TransactionAggregate, domain.SignalTable) {
	done := p.timed(ctx, "aggregate")
	aggs := AggregateTransactions(txLog)
	done()

	done = p.timed(ctx, "score")
	defer done()
	return aggs, ApplyAIScore(BuildSignals(snap, aggs))
}

// LoadDay loads whichever of the two files is available. An empty path
// means no file was found; signals are built only when both exist.
func (p *Pipeline) LoadDay(ctx context.Context, intradayPath, txPath string) (Day, error) {
	var day Day

	if intradayPath != "" {
		snap, err := p.LoadIntraday(ctx, intradayPath)
		if err != nil {
			return Day{}, fmt.Errorf("load intraday: %w", err)
		}
		day.Intraday = snap
		day.HasIntraday = true
	}

	if txPath != "" {
		txLog, err := p.LoadTransactions(ctx, txPath)
		if err != nil {
			return Day{}, fmt.Errorf("load transactions: %w", err)
		}
		day.Transactions = txLog
		day.HasTxLog = true
	}

	if day.HasSignals() {
		day.Aggregates, day.Signals = p.signalsFrom(ctx, day.Intraday, day.Transactions)
	}

	p.logger.InfoContext(ctx, "session data loaded",
		slog.Bool("intraday", day.HasIntraday),
		slog.Bool("transactions", day.HasTxLog),
		slog.Int("signals", len(day.Signals.Rows)))
	return day, nil
}
