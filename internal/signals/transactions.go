package signals

import (
	"sort"
	"strings"

	"egxcli/pkg/contracts/domain"
)

var (
	buySides  = map[string]struct{}{"B": {}, "BUY": {}}
	sellSides = map[string]struct{}{"S": {}, "SELL": {}}
)

// Behavior thresholds on buy_ratio.
const (
	AccumulationAbove = 0.6
	DistributionBelow = 0.4
)

// ClassifyBehavior maps a buy ratio to a session behavior. A missing ratio is Normal.
func ClassifyBehavior(buyRatio domain.Num) domain.Behavior {
	switch {
	case buyRatio.IsMissing():
		return domain.BehaviorNormal
	case buyRatio.Float() > AccumulationAbove:
		return domain.BehaviorAccumulation
	case buyRatio.Float() < DistributionBelow:
		return domain.BehaviorDistribution
	default:
		return domain.BehaviorNormal
	}
}

type side int

const (
	sideNone side = iota
	sideBuy
	sideSell
)

// classifySides tags every record as buy, sell or neither. The side text
// is used unless it yields no buys at all and the log has a Direction
// column, in which case the sign of Direction decides.
func classifySides(txLog domain.TransactionLog) []side {
	sides := make([]side, len(txLog.Records))
	anyBuy := false
	for i, rec := range txLog.Records {
		token := strings.ToUpper(strings.TrimSpace(rec.Side))
		if _, ok := buySides[token]; ok {
			sides[i] = sideBuy
			anyBuy = true
		} else if _, ok := sellSides[token]; ok {
			sides[i] = sideSell
		}
	}
	if anyBuy || !txLog.Has(domain.ColDirection) {
		return sides
	}

	for i, rec := range txLog.Records {
		switch {
		case rec.Direction.IsMissing():
			sides[i] = sideNone
		case rec.Direction.Float() > 0:
			sides[i] = sideBuy
		case rec.Direction.Float() < 0:
			sides[i] = sideSell
		default:
			sides[i] = sideNone
		}
	}
	return sides
}

// AggregateTransactions rolls a transaction log up per symbol. Missing
// volume and turnover count as zero. Records classified as neither buy nor
// sell still count toward the totals. Results are ordered by symbol.
func AggregateTransactions(txLog domain.TransactionLog) []domain.TransactionAggregate {
	if len(txLog.Records) == 0 {
		return nil
	}

	sides := classifySides(txLog)
	bySymbol := make(map[string]*domain.TransactionAggregate)

	for i, rec := range txLog.Records {
		if rec.Symbol == "" {
			continue
		}
		agg, ok := bySymbol[rec.Symbol]
		if !ok {
			agg = &domain.TransactionAggregate{Symbol: rec.Symbol}
			bySymbol[rec.Symbol] = agg
		}

		vol := rec.Volume.Or(0)
		agg.TotalVolume += vol
		agg.TotalTurnover += rec.Turnover.Or(0)
		switch sides[i] {
		case sideBuy:
			agg.BuyVolume += vol
		case sideSell:
			agg.SellVolume += vol
		}
	}

	out := make([]domain.TransactionAggregate, 0, len(bySymbol))
	for _, agg := range bySymbol {
		agg.BuyRatio = domain.Missing()
		if agg.TotalVolume > 0 {
			agg.BuyRatio = domain.Num(agg.BuyVolume / agg.TotalVolume)
		}
		agg.Behavior = ClassifyBehavior(agg.BuyRatio)
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
