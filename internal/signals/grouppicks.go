package signals

import (
	"sort"
	"strings"

	"egxcli/pkg/contracts/domain"
)

var symbolSeparators = strings.NewReplacer(",", " ", "؛", " ", ";", " ")

// ParseSymbolList splits free text into symbols on commas, semicolons
// (Latin and Arabic) and whitespace. Duplicates are removed, keeping the
// first occurrence.
func ParseSymbolList(text string) []string {
	fields := strings.Fields(symbolSeparators.Replace(text))
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// GroupPick is a signal row matched from a user supplied list.
type GroupPick struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description"`
	ChangePct   domain.Num      `json:"change_pct"`
	Volume      domain.Num      `json:"volume"`
	BuyRatio    domain.Num      `json:"buy_ratio"`
	Behavior    domain.Behavior `json:"behavior,omitempty"`
	AIProb      domain.Num      `json:"ai_prob"`
}

// FilterGroupPicks returns the rows whose symbol is in symbols, ordered by
// AI_Prob descending with ties kept in table order. Unknown symbols are
// ignored. An unscored table is ranked as if every row scored 0.5.
func FilterGroupPicks(table domain.SignalTable, symbols []string) []GroupPick {
	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[s] = struct{}{}
	}

	out := make([]GroupPick, 0)
	for _, r := range table.Rows {
		if _, ok := wanted[r.Symbol]; !ok {
			continue
		}
		ai := r.AIProb
		if !table.Scored {
			ai = domain.Num(ScoreBase)
		}
		out = append(out, GroupPick{
			Symbol:      r.Symbol,
			Description: r.Description,
			ChangePct:   r.ChangePct,
			Volume:      r.Volume,
			BuyRatio:    r.BuyRatio,
			Behavior:    r.Behavior,
			AIProb:      ai,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessNaNLast(out[i].AIProb.Float(), out[j].AIProb.Float(), true)
	})
	return out
}
