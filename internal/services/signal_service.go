package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"egxcli/internal/config"
	"egxcli/internal/dataprocessing"
	apierrors "egxcli/internal/errors"
	"egxcli/internal/files"
	"egxcli/internal/infrastructure"
	"egxcli/internal/signals"
	"egxcli/pkg/contracts/domain"
)

// SnapshotKey identifies the source files a snapshot was computed from.
type SnapshotKey struct {
	Intraday     files.FileInfo  `json:"intraday"`
	Transactions *files.FileInfo `json:"transactions,omitempty"`
}

// String is the cache key: the identity of both files.
func (k SnapshotKey) String() string {
	tx := "none"
	if k.Transactions != nil {
		tx = k.Transactions.Identity()
	}
	return k.Intraday.Identity() + ";" + tx
}

// Snapshot is the computed state of one session.
type Snapshot struct {
	Key      SnapshotKey `json:"key"`
	Day      signals.Day `json:"day"`
	LoadedAt time.Time   `json:"loaded_at"`
}

// SignalService serves the session analytics from the newest source files.
type SignalService struct {
	analytics   config.AnalyticsConfig
	paths       *config.Paths
	intraGlob   string
	txGlob      string
	discovery   *files.Discovery
	pipeline    *signals.Pipeline
	history     signals.HistoryLoader
	correlation *signals.CorrelationEngine
	cache       SnapshotCache
	group       singleflight.Group
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
}

// SignalServiceOptions carries the collaborators of a SignalService.
type SignalServiceOptions struct {
	Analytics          config.AnalyticsConfig
	Paths              *config.Paths
	IntradayPattern    string
	TransactionPattern string
	Pipeline           *signals.Pipeline
	History            signals.HistoryLoader
	Cache              SnapshotCache
	Metrics            *infrastructure.PipelineMetrics
	Logger             *slog.Logger
}

// NewSignalService creates the service. Nil cache means an in-process one.
func NewSignalService(opts SignalServiceOptions) *SignalService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	intraGlob, txGlob := opts.IntradayPattern, opts.TransactionPattern
	if intraGlob == "" {
		intraGlob = config.IntradayPattern
	}
	if txGlob == "" {
		txGlob = config.TransactionPattern
	}

	logger = infrastructure.WithComponent(logger, "signal_service")
	logger.Info("SignalService initialized with paths",
		slog.String("intraday_dir", opts.Paths.IntradayDir),
		slog.String("transaction_dir", opts.Paths.TransactionDir),
		slog.String("case_dir", opts.Paths.CaseDir),
		slog.String("cache", cache.Name()))

	return &SignalService{
		analytics:   opts.Analytics,
		paths:       opts.Paths,
		intraGlob:   intraGlob,
		txGlob:      txGlob,
		discovery:   files.NewDiscovery(opts.Paths.BaseDir),
		pipeline:    opts.Pipeline,
		history:     opts.History,
		correlation: signals.NewCorrelationEngine(opts.History, logger),
		cache:       cache,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

// NewDefaultSignalService wires the standard loader, pipeline and CASE store
// for paths.
func NewDefaultSignalService(cfg *config.Config, paths *config.Paths, cache SnapshotCache, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *SignalService {
	loader := dataprocessing.NewLoader(logger)
	return NewSignalService(SignalServiceOptions{
		Analytics:          cfg.Analytics,
		Paths:              paths,
		IntradayPattern:    cfg.Paths.IntradayPattern,
		TransactionPattern: cfg.Paths.TransactionPattern,
		Pipeline:           signals.NewPipeline(loader, logger, metrics.ObserveStage),
		History:            dataprocessing.NewCaseStore(paths.CaseDir, loader),
		Cache:              cache,
		Metrics:            metrics,
		Logger:             logger,
	})
}

// Analytics returns the configured defaults.
func (s *SignalService) Analytics() config.AnalyticsConfig {
	return s.analytics
}

// CurrentKey discovers the newest source files without loading them.
func (s *SignalService) CurrentKey(ctx context.Context) (SnapshotKey, error) {
	intra, ok, err := s.discovery.LatestFile(s.paths.IntradayDir, s.intraGlob)
	if err != nil {
		return SnapshotKey{}, apierrors.NewStorageError("discover intraday file", err)
	}
	if !ok {
		s.metrics.RecordError(ctx, string(apierrors.ErrTypeNoData))
		return SnapshotKey{}, apierrors.NewNoDataError(
			fmt.Sprintf("no intraday file matching %s in %s", s.intraGlob, s.paths.IntradayDir), ErrNoData)
	}

	key := SnapshotKey{Intraday: intra}
	tx, ok, err := s.discovery.LatestFile(s.paths.TransactionDir, s.txGlob)
	if err != nil {
		return SnapshotKey{}, apierrors.NewStorageError("discover transaction file", err)
	}
	if ok {
		key.Transactions = &tx
	}
	return key, nil
}

// Snapshot returns the session snapshot for the newest files, computing it
// at most once per file identity.
func (s *SignalService) Snapshot(ctx context.Context) (*Snapshot, error) {
	key, err := s.CurrentKey(ctx)
	if err != nil {
		return nil, err
	}
	cacheKey := key.String()

	snap, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot cache read failed, recomputing",
			slog.String("backend", s.cache.Name()),
			slog.String("error", err.Error()))
		s.metrics.RecordError(ctx, string(apierrors.ErrTypeCache))
	}
	s.metrics.RecordCacheLookup(ctx, s.cache.Name(), ok)
	if ok {
		return snap, nil
	}

	v, err, shared := s.group.Do(cacheKey, func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx), key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight snapshot load", slog.String("key", cacheKey))
	}
	return v.(*Snapshot), nil
}

func (s *SignalService) load(ctx context.Context, key SnapshotKey) (*Snapshot, error) {
	txPath := ""
	if key.Transactions != nil {
		txPath = key.Transactions.Path
	}

	day, err := s.pipeline.LoadDay(ctx, key.Intraday.Path, txPath)
	if err != nil {
		s.metrics.RecordError(ctx, string(apierrors.ErrTypeParsing))
		return nil, apierrors.NewParsingError("failed to load session files", err).
			WithContext("intraday", key.Intraday.Name)
	}

	snap := &Snapshot{Key: key, Day: day, LoadedAt: time.Now().UTC()}
	if err := s.cache.Set(ctx, key.String(), snap); err != nil {
		s.logger.WarnContext(ctx, "snapshot cache write failed",
			slog.String("backend", s.cache.Name()),
			slog.String("error", err.Error()))
		s.metrics.RecordError(ctx, string(apierrors.ErrTypeCache))
	}
	s.metrics.RecordSnapshot(ctx, len(day.Signals.Rows))

	s.logger.InfoContext(ctx, "session snapshot computed",
		slog.String("intraday", key.Intraday.Name),
		slog.Bool("transactions", key.Transactions != nil),
		slog.Int("rows", len(day.Intraday.Rows)),
		slog.Int("signals", len(day.Signals.Rows)))
	return snap, nil
}

// signalTable returns the scored table or ErrNoSignals.
func (s *SignalService) signalTable(ctx context.Context) (*Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Day.HasSignals() {
		return nil, apierrors.NewNoDataError(
			fmt.Sprintf("no transaction file matching %s in %s", s.txGlob, s.paths.TransactionDir), ErrNoSignals)
	}
	return snap, nil
}

// Overview summarizes the session market. n <= 0 uses the configured size.
func (s *SignalService) Overview(ctx context.Context, n int) (signals.Overview, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return signals.Overview{}, err
	}
	if n <= 0 {
		n = s.analytics.OverviewSize
	}
	return signals.BuildOverview(snap.Day.Intraday, n), nil
}

// Signals returns the signal table ordered by AI_Prob.
func (s *SignalService) Signals(ctx context.Context) ([]domain.SignalRow, error) {
	snap, err := s.signalTable(ctx)
	if err != nil {
		return nil, err
	}
	return signals.RankSignals(snap.Day.Signals), nil
}

// SignalTable returns the signal table in file order.
func (s *SignalService) SignalTable(ctx context.Context) (domain.SignalTable, error) {
	snap, err := s.signalTable(ctx)
	if err != nil {
		return domain.SignalTable{}, err
	}
	return snap.Day.Signals.Clone(), nil
}

// Breakouts returns the pivot-level breakout sets of the session.
func (s *SignalService) Breakouts(ctx context.Context) (signals.Breakouts, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return signals.Breakouts{}, err
	}
	return signals.FindBreakouts(snap.Day.Intraday), nil
}

// Candidates ranks short-horizon candidates. n <= 0 uses the configured count.
func (s *SignalService) Candidates(ctx context.Context, n int) ([]signals.Candidate, error) {
	snap, err := s.signalTable(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.analytics.CandidateCount
	}
	return signals.RankCandidates(snap.Day.Signals, n), nil
}

// CorrelationParams returns the configured defaults as scan parameters.
func (s *SignalService) CorrelationParams() signals.CorrelationParams {
	return signals.CorrelationParams{
		MinDays:    s.analytics.MinDays,
		MinAbsCorr: s.analytics.MinAbsCorr,
		TopN:       s.analytics.TopN,
	}
}

// Relationships scans the most liquid symbols for strongly correlated pairs.
func (s *SignalService) Relationships(ctx context.Context, params signals.CorrelationParams) ([]domain.CorrelationPair, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := s.correlation.BuildRelationships(ctx, snap.Day.Intraday, params)
	if err != nil {
		return nil, fmt.Errorf("build relationships: %w", err)
	}
	s.metrics.RecordCorrelation(ctx, len(pairs))
	return pairs, nil
}

// GroupPicks parses a free-text symbol list and returns the matching
// signal rows, best first.
func (s *SignalService) GroupPicks(ctx context.Context, text string) ([]signals.GroupPick, error) {
	snap, err := s.signalTable(ctx)
	if err != nil {
		return nil, err
	}
	return signals.FilterGroupPicks(snap.Day.Signals, signals.ParseSymbolList(text)), nil
}

// Search lists session symbols whose code or description contains query.
func (s *SignalService) Search(ctx context.Context, query string) ([]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return signals.SearchSymbols(snap.Day.Intraday, query), nil
}

// Technicals computes the indicators of symbol from its history file.
func (s *SignalService) Technicals(ctx context.Context, symbol string) (signals.Technicals, error) {
	series, err := s.history.LoadHistory(ctx, symbol)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return signals.Technicals{}, apierrors.NewAppError(apierrors.ErrTypeNotFound,
				fmt.Sprintf("no history file for %s", symbol), ErrNoHistory).WithContext("symbol", symbol)
		}
		return signals.Technicals{}, apierrors.NewParsingError(fmt.Sprintf("read history for %s", symbol), err)
	}

	tech, err := signals.ComputeTechnicals(series)
	switch {
	case errors.Is(err, signals.ErrMissingCloseColumn):
		return signals.Technicals{}, apierrors.NewMissingColumnError(domain.ColClosed, err).WithContext("symbol", symbol)
	case errors.Is(err, signals.ErrNoHistory):
		return signals.Technicals{}, apierrors.NewAppError(apierrors.ErrTypeNoData,
			fmt.Sprintf("history for %s has no dated bars", symbol), err).WithContext("symbol", symbol)
	case err != nil:
		return signals.Technicals{}, err
	}
	return tech, nil
}

// StockAnalysis builds the technical view of one session symbol. A missing
// or unusable history leaves the technicals out and says why.
func (s *SignalService) StockAnalysis(ctx context.Context, symbol string) (signals.StockAnalysis, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return signals.StockAnalysis{}, err
	}
	row, ok := snap.Day.Intraday.Find(symbol)
	if !ok {
		return signals.StockAnalysis{}, apierrors.NewAppError(apierrors.ErrTypeNotFound,
			fmt.Sprintf("symbol %s not found in the current session", symbol), ErrSymbolNotFound).
			WithContext("symbol", symbol)
	}

	var sig *domain.SignalRow
	if r, found := snap.Day.Signals.Find(symbol); found {
		sig = &r
	}

	var tech *signals.Technicals
	var historyErr string
	if t, err := s.Technicals(ctx, symbol); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return signals.StockAnalysis{}, ctxErr
		}
		historyErr = err.Error()
		s.logger.DebugContext(ctx, "technicals unavailable",
			slog.String("symbol", symbol),
			slog.String("error", historyErr))
	} else {
		tech = &t
	}

	analysis := signals.AnalyzeStock(row, sig, tech)
	analysis.HistoryError = historyErr
	return analysis, nil
}

// Ping checks the cache backend.
func (s *SignalService) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
