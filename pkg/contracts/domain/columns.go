package domain

// Canonical column names shared by the readers and analytics.
const (
	ColSymbol          = "Symbol"
	ColShortDesc       = "S. Description"
	ColDescription     = "Description"
	ColLast            = "Last"
	ColChangePct       = "% Change"
	ColOpen            = "Open"
	ColHigh            = "High"
	ColLow             = "Low"
	ColClose           = "Close"
	ColClosed          = "Closed"
	ColPrevClosed      = "Prev. Closed"
	ColVolume          = "Volume"
	ColTurnover        = "Turnover"
	ColTrades          = "Trades"
	ColCashInTurnover  = "Cash in Turnover"
	ColCashOutTurnover = "Cash Out Turnover"
	ColSector          = "Sector"
	ColRange           = "Range"
	ColPivot           = "Pivot Point"
	ColR1              = "Resistance 1 (R1)"
	ColR2              = "Resistance 2 (R2)"
	ColS1              = "Support 1 (S1)"
	ColS2              = "Support 2 (S2)"

	ColSide       = "Side"
	ColDirection  = "Direction"
	ColPrice      = "Price"
	ColTime       = "Time"
	ColSequenceID = "Sequence ID"

	ColDate      = "Date"
	ColChgPct    = "%Chg"
	ColChg       = "Chg."
	ColAIProb    = "AI_Prob"
	ColBuyRatio  = "buy_ratio"
	ColBehavior  = "behavior"
	ColRangeCalc = "Range_calc"
)

// ColumnSet records which canonical columns a table carried.
type ColumnSet []string

// Has reports whether col is present.
func (c ColumnSet) Has(col string) bool {
	for _, name := range c {
		if name == col {
			return true
		}
	}
	return false
}

// With returns a copy of the set including col.
func (c ColumnSet) With(col string) ColumnSet {
	if c.Has(col) {
		return c
	}
	out := make(ColumnSet, len(c), len(c)+1)
	copy(out, c)
	return append(out, col)
}
