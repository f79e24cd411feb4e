package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"egxcli/pkg/contracts/domain"
)

// intradayCoreColumns are expected in every intraday export.
var intradayCoreColumns = []string{
	domain.ColSymbol,
	domain.ColShortDesc,
	domain.ColLast,
	domain.ColChangePct,
	domain.ColOpen,
	domain.ColHigh,
	domain.ColLow,
	domain.ColVolume,
}

// typedIntradayColumns have a dedicated field on domain.IntradayRow.
var typedIntradayColumns = map[string]struct{}{
	domain.ColSymbol: {}, domain.ColShortDesc: {}, domain.ColSector: {},
	domain.ColLast: {}, domain.ColChangePct: {}, domain.ColOpen: {},
	domain.ColHigh: {}, domain.ColLow: {}, domain.ColClose: {},
	domain.ColPrevClosed: {}, domain.ColVolume: {}, domain.ColTurnover: {},
	domain.ColTrades: {}, domain.ColCashInTurnover: {}, domain.ColCashOutTurnover: {},
	domain.ColRange: {}, domain.ColPivot: {}, domain.ColR1: {},
	domain.ColR2: {}, domain.ColS1: {}, domain.ColS2: {},
}

// Loader reads and normalizes the three export kinds into domain types.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// LoadIntraday reads an intraday workbook. Pivot levels are not computed here.
func (l *Loader) LoadIntraday(ctx context.Context, path string) (domain.IntradaySnapshot, error) {
	raw, err := ReadWorkbook(ctx, path)
	if err != nil {
		return domain.IntradaySnapshot{}, fmt.Errorf("read intraday %s: %w", filepath.Base(path), err)
	}
	t := NormalizeIntraday(raw)

	var missing []string
	for _, col := range intradayCoreColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		l.logger.WarnContext(ctx, "intraday missing core columns",
			slog.String("file", filepath.Base(path)),
			slog.Any("columns", missing))
	}

	snap := IntradayFromTable(t)
	l.logger.InfoContext(ctx, "loaded intraday",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", len(snap.Rows)))
	return snap, nil
}

// LoadTransactions reads a session transaction log.
func (l *Loader) LoadTransactions(ctx context.Context, path string) (domain.TransactionLog, error) {
	raw, enc, err := ReadDelimited(ctx, path)
	if err != nil {
		return domain.TransactionLog{}, fmt.Errorf("read transactions %s: %w", filepath.Base(path), err)
	}
	l.logEncoding(ctx, "transactions", path, enc)

	txLog := TransactionsFromTable(NormalizeTransactions(raw))
	l.logger.InfoContext(ctx, "loaded transactions",
		slog.String("file", filepath.Base(path)),
		slog.Int("records", len(txLog.Records)))
	return txLog, nil
}

// LoadCase reads one symbol's historical bar file.
func (l *Loader) LoadCase(ctx context.Context, symbol, path string) (domain.HistorySeries, error) {
	raw, enc, err := ReadDelimited(ctx, path)
	if err != nil {
		return domain.HistorySeries{}, fmt.Errorf("read history for %s: %w", symbol, err)
	}
	l.logEncoding(ctx, "case", path, enc)

	series := HistoryFromTable(NormalizeCase(raw))
	series.Symbol = symbol
	return series, nil
}

func (l *Loader) logEncoding(ctx context.Context, kind, path, enc string) {
	if enc == FallbackEncoding {
		l.logger.WarnContext(ctx, "loaded with fallback encoding, undecodable bytes replaced",
			slog.String("kind", kind),
			slog.String("file", filepath.Base(path)),
			slog.String("encoding", enc))
		return
	}
	l.logger.InfoContext(ctx, "loaded using encoding",
		slog.String("kind", kind),
		slog.String("file", filepath.Base(path)),
		slog.String("encoding", enc))
}

// CaseStore loads historical files named <SYMBOL>.csv from a directory.
type CaseStore struct {
	dir    string
	loader *Loader
}

// NewCaseStore creates a store rooted at dir.
func NewCaseStore(dir string, loader *Loader) *CaseStore {
	return &CaseStore{dir: dir, loader: loader}
}

// Path returns the history file path for symbol.
func (s *CaseStore) Path(symbol string) string {
	return filepath.Join(s.dir, symbol+".csv")
}

// LoadHistory reads the history of symbol.
func (s *CaseStore) LoadHistory(ctx context.Context, symbol string) (domain.HistorySeries, error) {
	return s.loader.LoadCase(ctx, symbol, s.Path(symbol))
}

// IntradayFromTable converts a normalized intraday table.
func IntradayFromTable(t Table) domain.IntradaySnapshot {
	idx := func(col string) int { return t.Index(col) }
	num := func(row []string, i int) domain.Num { return ParseNum(Cell(row, i)) }

	var (
		iSym, iDesc, iSector = idx(domain.ColSymbol), idx(domain.ColShortDesc), idx(domain.ColSector)
		iLast, iChg          = idx(domain.ColLast), idx(domain.ColChangePct)
		iOpen, iHigh, iLow   = idx(domain.ColOpen), idx(domain.ColHigh), idx(domain.ColLow)
		iClose, iPrev        = idx(domain.ColClose), idx(domain.ColPrevClosed)
		iVol, iTurn, iTrades = idx(domain.ColVolume), idx(domain.ColTurnover), idx(domain.ColTrades)
		iCashIn, iCashOut    = idx(domain.ColCashInTurnover), idx(domain.ColCashOutTurnover)
		iRange, iPivot       = idx(domain.ColRange), idx(domain.ColPivot)
		iR1, iR2, iS1, iS2   = idx(domain.ColR1), idx(domain.ColR2), idx(domain.ColS1), idx(domain.ColS2)
	)

	rows := make([]domain.IntradayRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := domain.IntradayRow{
			Symbol:          Cell(row, iSym),
			Description:     Cell(row, iDesc),
			Sector:          Cell(row, iSector),
			Last:            num(row, iLast),
			ChangePct:       num(row, iChg),
			Open:            num(row, iOpen),
			High:            num(row, iHigh),
			Low:             num(row, iLow),
			Close:           num(row, iClose),
			PrevClose:       num(row, iPrev),
			Volume:          num(row, iVol),
			Turnover:        num(row, iTurn),
			Trades:          num(row, iTrades),
			CashInTurnover:  num(row, iCashIn),
			CashOutTurnover: num(row, iCashOut),
			Range:           num(row, iRange),
			Pivot:           num(row, iPivot),
			R1:              num(row, iR1),
			R2:              num(row, iR2),
			S1:              num(row, iS1),
			S2:              num(row, iS2),
		}
		for i, col := range t.Columns {
			if _, typed := typedIntradayColumns[col]; typed {
				continue
			}
			if v := Cell(row, i); v != "" {
				if r.Extra == nil {
					r.Extra = make(map[string]string)
				}
				r.Extra[col] = v
			}
		}
		rows = append(rows, r)
	}

	cols := make(domain.ColumnSet, len(t.Columns))
	copy(cols, t.Columns)
	return domain.IntradaySnapshot{Rows: rows, Columns: cols}
}

// TransactionsFromTable converts a normalized transaction table.
func TransactionsFromTable(t Table) domain.TransactionLog {
	var (
		iSym, iDesc  = t.Index(domain.ColSymbol), t.Index(domain.ColDescription)
		iSide, iDir  = t.Index(domain.ColSide), t.Index(domain.ColDirection)
		iPrice, iChg = t.Index(domain.ColPrice), t.Index(domain.ColChangePct)
		iVol, iTurn  = t.Index(domain.ColVolume), t.Index(domain.ColTurnover)
		iTime, iSeq  = t.Index(domain.ColTime), t.Index(domain.ColSequenceID)
	)

	records := make([]domain.TransactionRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, domain.TransactionRecord{
			Symbol:      Cell(row, iSym),
			Description: Cell(row, iDesc),
			Side:        Cell(row, iSide),
			Direction:   ParseNum(Cell(row, iDir)),
			Price:       ParseNum(Cell(row, iPrice)),
			ChangePct:   ParseNum(Cell(row, iChg)),
			Volume:      ParseNum(Cell(row, iVol)),
			Turnover:    ParseNum(Cell(row, iTurn)),
			Time:        Cell(row, iTime),
			SequenceID:  Cell(row, iSeq),
		})
	}

	cols := make(domain.ColumnSet, len(t.Columns))
	copy(cols, t.Columns)
	return domain.TransactionLog{Records: records, Columns: cols}
}

// HistoryFromTable converts a normalized historical bar table. Close is
// taken from Closed when present, else Close.
func HistoryFromTable(t Table) domain.HistorySeries {
	iClose := t.Index(domain.ColClosed)
	if iClose < 0 {
		iClose = t.Index(domain.ColClose)
	}
	var (
		iDate, iOpen       = t.Index(domain.ColDate), t.Index(domain.ColOpen)
		iHigh, iLow, iPrev = t.Index(domain.ColHigh), t.Index(domain.ColLow), t.Index(domain.ColPrevClosed)
		iChg, iChgPct      = t.Index(domain.ColChg), t.Index(domain.ColChgPct)
		iVol, iTurn        = t.Index(domain.ColVolume), t.Index(domain.ColTurnover)
	)

	bars := make([]domain.HistoricalBar, 0, len(t.Rows))
	for _, row := range t.Rows {
		bars = append(bars, domain.HistoricalBar{
			Date:      ParseDayFirst(Cell(row, iDate)),
			Open:      ParseNum(Cell(row, iOpen)),
			High:      ParseNum(Cell(row, iHigh)),
			Low:       ParseNum(Cell(row, iLow)),
			Close:     ParseNum(Cell(row, iClose)),
			PrevClose: ParseNum(Cell(row, iPrev)),
			Change:    ParseNum(Cell(row, iChg)),
			ChangePct: ParseNum(Cell(row, iChgPct)),
			Volume:    ParseNum(Cell(row, iVol)),
			Turnover:  ParseNum(Cell(row, iTurn)),
		})
	}

	cols := make(domain.ColumnSet, len(t.Columns))
	copy(cols, t.Columns)
	return domain.HistorySeries{Bars: bars, Columns: cols}
}
