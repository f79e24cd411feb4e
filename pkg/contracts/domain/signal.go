package domain

// SignalRow joins an intraday row with its session flow and score.
type SignalRow struct {
	IntradayRow

	// HasFlow is false when the symbol had no transactions.
	HasFlow       bool     `json:"has_flow"`
	TotalVolume   Num      `json:"total_volume"`
	TotalTurnover Num      `json:"total_turnover"`
	BuyVolume     Num      `json:"buy_volume"`
	SellVolume    Num      `json:"sell_volume"`
	BuyRatio      Num      `json:"buy_ratio"`
	Behavior      Behavior `json:"behavior,omitempty"`
	AIProb        Num      `json:"ai_prob"`
}

// SignalTable is the signal set of one session.
type SignalTable struct {
	Rows    []SignalRow `json:"rows"`
	Columns ColumnSet   `json:"columns"`
	// Scored is set once AI_Prob has been assigned.
	Scored bool `json:"scored"`
}

// Empty reports whether the table has no rows.
func (t SignalTable) Empty() bool {
	return len(t.Rows) == 0
}

// Has reports whether the underlying snapshot carried col.
func (t SignalTable) Has(col string) bool {
	return t.Columns.Has(col)
}

// Clone returns a copy whose row slice can be modified independently.
func (t SignalTable) Clone() SignalTable {
	rows := make([]SignalRow, len(t.Rows))
	copy(rows, t.Rows)
	cols := make(ColumnSet, len(t.Columns))
	copy(cols, t.Columns)
	return SignalTable{Rows: rows, Columns: cols, Scored: t.Scored}
}

// Find returns the signal row for symbol.
func (t SignalTable) Find(symbol string) (SignalRow, bool) {
	for _, r := range t.Rows {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return SignalRow{}, false
}

// Relation labels the sign of a correlation.
type Relation string

const (
	RelationPositive Relation = "Positive"
	RelationNegative Relation = "Negative"
)

// CorrelationPair is one strongly co-moving pair of symbols.
type CorrelationPair struct {
	SymbolA  string   `json:"symbol_a"`
	SymbolB  string   `json:"symbol_b"`
	Corr     float64  `json:"corr"`
	Relation Relation `json:"relation"`
}
