package signals

import (
	"sort"

	"egxcli/pkg/contracts/domain"
)

// BreakoutRow is the subset of intraday fields reported for a breakout.
type BreakoutRow struct {
	Symbol      string     `json:"symbol"`
	Description string     `json:"description"`
	Last        domain.Num `json:"last"`
	ChangePct   domain.Num `json:"change_pct"`
	Volume      domain.Num `json:"volume"`
	R1          domain.Num `json:"r1"`
	R2          domain.Num `json:"r2"`
	S1          domain.Num `json:"s1"`
	S2          domain.Num `json:"s2"`
}

// Breakouts groups symbols by the level their last price crossed.
type Breakouts struct {
	R1 []BreakoutRow `json:"r1_break"`
	R2 []BreakoutRow `json:"r2_break"`
	S1 []BreakoutRow `json:"s1_break"`
	S2 []BreakoutRow `json:"s2_break"`
}

// Total counts rows across all sets.
func (b Breakouts) Total() int {
	return len(b.R1) + len(b.R2) + len(b.S1) + len(b.S2)
}

func breakoutRow(r domain.IntradayRow) BreakoutRow {
	return BreakoutRow{
		Symbol:      r.Symbol,
		Description: r.Description,
		Last:        r.Last,
		ChangePct:   r.ChangePct,
		Volume:      r.Volume,
		R1:          r.R1,
		R2:          r.R2,
		S1:          r.S1,
		S2:          r.S2,
	}
}

// FindBreakouts flags rows whose last price is at or beyond a level.
// Pivot levels are filled first. Only rows with a present level and price
// are compared. Resistance sets are ordered by % change descending and
// support sets ascending, with missing changes last.
func FindBreakouts(snap domain.IntradaySnapshot) Breakouts {
	snap = AddPivotLevels(snap)

	var b Breakouts
	for _, r := range snap.Rows {
		if r.Last.IsMissing() {
			continue
		}
		last := r.Last.Float()
		if r.R1.Valid() && last >= r.R1.Float() {
			b.R1 = append(b.R1, breakoutRow(r))
		}
		if r.R2.Valid() && last >= r.R2.Float() {
			b.R2 = append(b.R2, breakoutRow(r))
		}
		if r.S1.Valid() && last <= r.S1.Float() {
			b.S1 = append(b.S1, breakoutRow(r))
		}
		if r.S2.Valid() && last <= r.S2.Float() {
			b.S2 = append(b.S2, breakoutRow(r))
		}
	}

	sortByChange(b.R1, true)
	sortByChange(b.R2, true)
	sortByChange(b.S1, false)
	sortByChange(b.S2, false)
	return b
}

func sortByChange(rows []BreakoutRow, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessNaNLast(rows[i].ChangePct.Float(), rows[j].ChangePct.Float(), descending)
	})
}
