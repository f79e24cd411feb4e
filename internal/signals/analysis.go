package signals

import (
	"math"
	"sort"
	"strings"

	"egxcli/pkg/contracts/domain"
)

// Trend is the moving-average trend label.
type Trend string

const (
	TrendUp       Trend = "uptrend"
	TrendDown     Trend = "downtrend"
	TrendSideways Trend = "sideways"
	TrendUnknown  Trend = "unknown"
)

// RSIZone labels an RSI reading.
type RSIZone string

const (
	RSIOversold   RSIZone = "oversold"
	RSIOverbought RSIZone = "overbought"
	RSINeutral    RSIZone = "neutral"
	RSIUnknown    RSIZone = "unknown"
)

// Volatility labels the intraday range.
type Volatility string

const (
	VolatilityLow     Volatility = "low"
	VolatilityMedium  Volatility = "medium"
	VolatilityHigh    Volatility = "high"
	VolatilityActive  Volatility = "active"
	VolatilityUnknown Volatility = "unknown"
)

// Decision is the rule-based educational summary. It is not advice.
type Decision string

const (
	DecisionBuyInStages Decision = "buy_in_stages"
	DecisionTakeProfit  Decision = "take_profit"
	DecisionAvoid       Decision = "avoid_new_buys"
	DecisionWait        Decision = "wait"
)

// RSI and range thresholds.
const (
	RSIOversoldBelow   = 30
	RSIOverboughtAbove = 70
	RangeLowBelow      = 1
	RangeMediumBelow   = 3
)

// ClassifyTrend compares the last price with the 20 and 50 bar averages.
func ClassifyTrend(last, ma20, ma50 domain.Num) Trend {
	if domain.AnyMissing(last, ma20, ma50) {
		return TrendUnknown
	}
	p, s, l := last.Float(), ma20.Float(), ma50.Float()
	switch {
	case p > s && s > l:
		return TrendUp
	case p < s && s < l:
		return TrendDown
	default:
		return TrendSideways
	}
}

// ClassifyRSI labels an RSI value.
func ClassifyRSI(rsi domain.Num) RSIZone {
	switch {
	case rsi.IsMissing():
		return RSIUnknown
	case rsi.Float() < RSIOversoldBelow:
		return RSIOversold
	case rsi.Float() > RSIOverboughtAbove:
		return RSIOverbought
	default:
		return RSINeutral
	}
}

// ClassifyVolatility labels the intraday range in percent. Without a range
// a known 20-day average volume marks the symbol as active.
func ClassifyVolatility(rangePct, vol20 domain.Num) Volatility {
	switch {
	case rangePct.Valid() && rangePct.Float() < RangeLowBelow:
		return VolatilityLow
	case rangePct.Valid() && rangePct.Float() < RangeMediumBelow:
		return VolatilityMedium
	case rangePct.Valid():
		return VolatilityHigh
	case vol20.Valid():
		return VolatilityActive
	default:
		return VolatilityUnknown
	}
}

// Decide combines trend, daily change, session behavior and RSI.
func Decide(trend Trend, changePct domain.Num, behavior domain.Behavior, rsi domain.Num) Decision {
	switch {
	case trend == TrendUp && changePct.Valid() && changePct.Float() > -1 &&
		behavior == domain.BehaviorAccumulation && (rsi.IsMissing() || rsi.Float() < RSIOverboughtAbove):
		return DecisionBuyInStages
	case rsi.Valid() && rsi.Float() > RSIOverboughtAbove:
		return DecisionTakeProfit
	case trend == TrendDown && behavior == domain.BehaviorDistribution:
		return DecisionAvoid
	default:
		return DecisionWait
	}
}

// PriceZones are educational entry, stop and target prices.
type PriceZones struct {
	BuyLow  float64 `json:"buy_low"`
	BuyHigh float64 `json:"buy_high"`
	Stop    float64 `json:"stop"`
	Target  float64 `json:"target"`
}

// ComputeZones derives zones from the last price and pivot levels, falling
// back to fixed percentages when levels are missing. ok is false without a
// last price.
func ComputeZones(last domain.Num, pivot, r1, r2, s1, s2 domain.Num) (PriceZones, bool) {
	if last.IsMissing() {
		return PriceZones{}, false
	}
	p := last.Float()

	var support float64
	switch {
	case s1.Valid():
		support = s1.Float()
	case pivot.Valid() && s2.Valid():
		support = pivot.Float() - (pivot.Float()-s2.Float())/2
	default:
		support = p * 0.97
	}

	stop := support * 0.97
	if s2.Valid() {
		stop = s2.Float()
	}

	var target float64
	switch {
	case r1.Valid() && p < r1.Float():
		target = r1.Float()
	case r2.Valid() && p <= r2.Float():
		target = r2.Float()
	case r2.Valid():
		target = r2.Float() * 1.03
	case r1.Valid():
		target = r1.Float() * 1.03
	default:
		target = p * 1.05
	}

	return PriceZones{
		BuyLow:  math.Min(p, support),
		BuyHigh: math.Max(p, support),
		Stop:    stop,
		Target:  target,
	}, true
}

// StockAnalysis is the technical view of one symbol.
type StockAnalysis struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description"`
	Last        domain.Num      `json:"last"`
	PrevClose   domain.Num      `json:"prev_close"`
	ChangePct   domain.Num      `json:"change_pct"`
	Range       domain.Num      `json:"range"`
	Pivot       domain.Num      `json:"pivot"`
	R1          domain.Num      `json:"r1"`
	R2          domain.Num      `json:"r2"`
	S1          domain.Num      `json:"s1"`
	S2          domain.Num      `json:"s2"`
	Technicals  *Technicals     `json:"technicals,omitempty"`
	BuyRatio    domain.Num      `json:"buy_ratio"`
	Behavior    domain.Behavior `json:"behavior,omitempty"`
	Trend       Trend           `json:"trend"`
	RSI         RSIZone         `json:"rsi_zone"`
	Volatility  Volatility      `json:"volatility"`
	Decision    Decision        `json:"decision"`
	Zones       *PriceZones     `json:"zones,omitempty"`
	// HistoryError explains why technicals are absent.
	HistoryError string `json:"history_error,omitempty"`
}

// AnalyzeStock builds the technical view for an intraday row. The row should
// already carry pivot levels. sig and tech may be nil when the symbol has no
// session flow or no usable history. Last price and previous close fall back
// to the history when the intraday row lacks them.
func AnalyzeStock(row domain.IntradayRow, sig *domain.SignalRow, tech *Technicals) StockAnalysis {
	a := StockAnalysis{
		Symbol:      row.Symbol,
		Description: row.Description,
		Last:        row.Last,
		PrevClose:   row.PrevClose,
		ChangePct:   row.ChangePct,
		Range:       row.Range,
		Pivot:       row.Pivot,
		R1:          row.R1,
		R2:          row.R2,
		S1:          row.S1,
		S2:          row.S2,
		Technicals:  tech,
		BuyRatio:    domain.Missing(),
	}

	ma20, ma50, rsi, vol20 := domain.Missing(), domain.Missing(), domain.Missing(), domain.Missing()
	if tech != nil {
		if a.Last.IsMissing() {
			a.Last = tech.Close
		}
		if a.PrevClose.IsMissing() {
			a.PrevClose = tech.PrevClose
		}
		ma20, ma50, rsi, vol20 = tech.MA20, tech.MA50, tech.RSI14, tech.Vol20
	}

	if sig != nil && sig.HasFlow {
		a.BuyRatio = sig.BuyRatio
		a.Behavior = sig.Behavior
	}

	a.Trend = ClassifyTrend(a.Last, ma20, ma50)
	a.RSI = ClassifyRSI(rsi)
	a.Volatility = ClassifyVolatility(row.Range, vol20)
	a.Decision = Decide(a.Trend, a.ChangePct, a.Behavior, rsi)
	if zones, ok := ComputeZones(a.Last, a.Pivot, a.R1, a.R2, a.S1, a.S2); ok {
		a.Zones = &zones
	}
	return a
}

// RankSignals orders signal rows by AI_Prob, highest first. Rows of an
// unscored table rank as 0.5, so the original order is kept.
func RankSignals(table domain.SignalTable) []domain.SignalRow {
	rows := make([]domain.SignalRow, len(table.Rows))
	copy(rows, table.Rows)
	if !table.Scored {
		for i := range rows {
			rows[i].AIProb = domain.Num(ScoreBase)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return lessNaNLast(rows[i].AIProb.Float(), rows[j].AIProb.Float(), true)
	})
	return rows
}

// SearchSymbols returns the sorted unique symbols whose code or description
// contains query, ignoring case. An empty query matches every symbol.
func SearchSymbols(snap domain.IntradaySnapshot, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range snap.Rows {
		if r.Symbol == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Symbol), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		if _, dup := seen[r.Symbol]; dup {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r.Symbol)
	}
	sort.Strings(out)
	return out
}
