package signals

import (
	"sort"

	"egxcli/pkg/contracts/domain"
)

// DefaultCandidateCount is the number of short-horizon candidates returned
// when the caller does not ask for a specific count.
const DefaultCandidateCount = 5

// Candidate is a symbol ranked for same-day or next-day trading.
type Candidate struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description"`
	Last        domain.Num      `json:"last"`
	ChangePct   domain.Num      `json:"change_pct"`
	Volume      domain.Num      `json:"volume"`
	Range       domain.Num      `json:"range_calc"`
	BuyRatio    domain.Num      `json:"buy_ratio"`
	Behavior    domain.Behavior `json:"behavior,omitempty"`
	AIProb      domain.Num      `json:"ai_prob"`
	Score       float64         `json:"t0t1_score"`
}

// CandidateScore weighs the heuristic score, intraday range and order flow.
// A missing range counts as 0 and a missing buy ratio as neutral.
func CandidateScore(aiProb, rangePct, buyRatio domain.Num) float64 {
	return 100*aiProb.Or(0.5) + 3*rangePct.Or(0) + 50*(buyRatio.Or(0.5)-0.5)
}

// rangeOf returns the row's Range when the table has that column, else the
// high-low spread as a percent of last price.
func rangeOf(r domain.SignalRow, hasRange bool) domain.Num {
	if hasRange {
		return r.Range
	}
	if domain.AnyMissing(r.High, r.Low, r.Last) || r.Last.Float() == 0 {
		return domain.Missing()
	}
	return domain.Num((r.High.Float() - r.Low.Float()) / r.Last.Float() * 100)
}

// RankCandidates screens rows at or above the median volume and the median
// range, scores the survivors and returns the top n by score.
func RankCandidates(table domain.SignalTable, n int) []Candidate {
	if table.Empty() || n <= 0 {
		return []Candidate{}
	}

	hasRange := table.Has(domain.ColRange)
	ranges := make([]float64, len(table.Rows))
	volumes := make([]float64, len(table.Rows))
	for i, r := range table.Rows {
		ranges[i] = rangeOf(r, hasRange).Float()
		volumes[i] = r.Volume.Or(0)
	}
	medVol := median(volumes)
	medRange := median(ranges)

	out := make([]Candidate, 0)
	for i, r := range table.Rows {
		// NaN compares false, so rows with a missing range never pass.
		if !(volumes[i] >= medVol && ranges[i] >= medRange) {
			continue
		}
		ai := r.AIProb
		if !table.Scored {
			ai = domain.Missing()
		}
		rng := domain.Num(ranges[i])
		out = append(out, Candidate{
			Symbol:      r.Symbol,
			Description: r.Description,
			Last:        r.Last,
			ChangePct:   r.ChangePct,
			Volume:      r.Volume,
			Range:       rng,
			BuyRatio:    r.BuyRatio,
			Behavior:    r.Behavior,
			AIProb:      ai,
			Score:       CandidateScore(ai, rng, r.BuyRatio),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
