package domain

import (
	"time"
)

// IndexSymbols are market indices listed alongside stocks in the intraday export.
var IndexSymbols = map[string]struct{}{
	"EGX30":               {},
	"EGX70":               {},
	"EGX100":              {},
	"EGX100 EWI":          {},
	"EGX70 EWI":           {},
	"EGX30ETF":            {},
	"EGX30TR":             {},
	"SHARIAH":             {},
	"EGX33 Shariah Index": {},
}

// IsIndexSymbol reports whether symbol is a market index rather than a stock.
func IsIndexSymbol(symbol string) bool {
	_, ok := IndexSymbols[symbol]
	return ok
}

// IntradayRow is one traded symbol in the session snapshot
type IntradayRow struct {
	Symbol          string `json:"symbol"`
	Description     string `json:"description"`
	Sector          string `json:"sector,omitempty"`
	Last            Num    `json:"last"`
	ChangePct       Num    `json:"change_pct"`
	Open            Num    `json:"open"`
	High            Num    `json:"high"`
	Low             Num    `json:"low"`
	Close           Num    `json:"close"`
	PrevClose       Num    `json:"prev_close"`
	Volume          Num    `json:"volume"`
	Turnover        Num    `json:"turnover"`
	Trades          Num    `json:"trades"`
	CashInTurnover  Num    `json:"cash_in_turnover"`
	CashOutTurnover Num    `json:"cash_out_turnover"`
	Range           Num    `json:"range"`
	Pivot           Num    `json:"pivot"`
	R1              Num    `json:"r1"`
	R2              Num    `json:"r2"`
	S1              Num    `json:"s1"`
	S2              Num    `json:"s2"`

	// Extra holds columns without a typed field, keyed by canonical name.
	Extra map[string]string `json:"extra,omitempty"`
}

// IntradaySnapshot is the parsed intraday export.
type IntradaySnapshot struct {
	Rows    []IntradayRow `json:"rows"`
	Columns ColumnSet     `json:"columns"`
}

// Has reports whether the source file carried col.
func (s IntradaySnapshot) Has(col string) bool {
	return s.Columns.Has(col)
}

// Empty reports whether the snapshot has no rows.
func (s IntradaySnapshot) Empty() bool {
	return len(s.Rows) == 0
}

// Clone returns a copy whose row slice can be modified independently.
func (s IntradaySnapshot) Clone() IntradaySnapshot {
	rows := make([]IntradayRow, len(s.Rows))
	copy(rows, s.Rows)
	cols := make(ColumnSet, len(s.Columns))
	copy(cols, s.Columns)
	return IntradaySnapshot{Rows: rows, Columns: cols}
}

// Find returns the row for symbol.
func (s IntradaySnapshot) Find(symbol string) (IntradayRow, bool) {
	for _, r := range s.Rows {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return IntradayRow{}, false
}

// TransactionRecord is a single trade event in the session log.
type TransactionRecord struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	Side        string `json:"side"`
	Direction   Num    `json:"direction"`
	Price       Num    `json:"price"`
	ChangePct   Num    `json:"change_pct"`
	Volume      Num    `json:"volume"`
	Turnover    Num    `json:"turnover"`
	Time        string `json:"time,omitempty"`
	SequenceID  string `json:"sequence_id,omitempty"`
}

// TransactionLog is the parsed transaction export.
type TransactionLog struct {
	Records []TransactionRecord `json:"records"`
	Columns ColumnSet           `json:"columns"`
}

// Has reports whether the source file carried col.
func (l TransactionLog) Has(col string) bool {
	return l.Columns.Has(col)
}

// Behavior classifies session order flow.
type Behavior string

const (
	BehaviorAccumulation Behavior = "Accumulation"
	BehaviorDistribution Behavior = "Distribution"
	BehaviorNormal       Behavior = "Normal"
)

// TransactionAggregate is the per-symbol roll-up of a transaction log.
type TransactionAggregate struct {
	Symbol        string   `json:"symbol"`
	TotalVolume   float64  `json:"total_volume"`
	TotalTurnover float64  `json:"total_turnover"`
	BuyVolume     float64  `json:"buy_volume"`
	SellVolume    float64  `json:"sell_volume"`
	BuyRatio      Num      `json:"buy_ratio"`
	Behavior      Behavior `json:"behavior"`
}

// HistoricalBar is one trading day of a symbol's history.
type HistoricalBar struct {
	// Date is zero when the source value could not be parsed.
	Date      time.Time `json:"date"`
	Open      Num       `json:"open"`
	High      Num       `json:"high"`
	Low       Num       `json:"low"`
	Close     Num       `json:"close"`
	PrevClose Num       `json:"prev_close"`
	Change    Num       `json:"change"`
	ChangePct Num       `json:"change_pct"`
	Volume    Num       `json:"volume"`
	Turnover  Num       `json:"turnover"`
}

// HistorySeries is the parsed history file of one symbol, in file order.
type HistorySeries struct {
	Symbol  string          `json:"symbol"`
	Bars    []HistoricalBar `json:"bars"`
	Columns ColumnSet       `json:"columns"`
}

// HasClose reports whether a close column was present.
func (h HistorySeries) HasClose() bool {
	return h.Columns.Has(ColClosed) || h.Columns.Has(ColClose)
}
