package exporter

import (
	"egxcli/internal/signals"
	"egxcli/pkg/contracts/domain"
)

// Report file names written by the report command.
const (
	SignalsFile       = "signals.csv"
	CandidatesFile    = "t0_t1_candidates.csv"
	BreakoutsFile     = "breakouts.csv"
	RelationshipsFile = "relationships.csv"
	GroupPicksFile    = "group_picks.csv"
)

var signalHeaders = []string{
	domain.ColSymbol, domain.ColDescription, domain.ColLast, domain.ColChangePct,
	domain.ColVolume, domain.ColPivot, domain.ColR1, domain.ColR2, domain.ColS1, domain.ColS2,
	"Total Turnover", domain.ColCashInTurnover, domain.ColCashOutTurnover,
	domain.ColBuyRatio, domain.ColBehavior, domain.ColAIProb,
}

// SignalsTable renders signal rows in the order given.
func SignalsTable(rows []domain.SignalRow) Table {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Symbol, r.Description, formatNum(r.Last), formatNum(r.ChangePct),
			formatNum(r.Volume), formatNum(r.Pivot), formatNum(r.R1), formatNum(r.R2), formatNum(r.S1), formatNum(r.S2),
			formatNum(r.TotalTurnover), formatNum(r.CashInTurnover), formatNum(r.CashOutTurnover),
			formatRatio(r.BuyRatio), string(r.Behavior), formatRatio(r.AIProb),
		})
	}
	return Table{Headers: signalHeaders, Records: records}
}

// CandidatesTable renders ranked T+0/T+1 candidates.
func CandidatesTable(cs []signals.Candidate) Table {
	records := make([][]string, 0, len(cs))
	for _, c := range cs {
		records = append(records, []string{
			c.Symbol, c.Description, formatNum(c.Last), formatNum(c.ChangePct), formatNum(c.Volume),
			formatNum(c.Range), formatRatio(c.BuyRatio), string(c.Behavior), formatRatio(c.AIProb),
			formatRatio(domain.Num(c.Score)),
		})
	}
	return Table{
		Headers: []string{
			domain.ColSymbol, domain.ColDescription, domain.ColLast, domain.ColChangePct, domain.ColVolume,
			domain.ColRangeCalc, domain.ColBuyRatio, domain.ColBehavior, domain.ColAIProb, "T0T1_Score",
		},
		Records: records,
	}
}

// BreakoutsTable flattens the four breakout sets, tagging each row with
// the level it crossed.
func BreakoutsTable(b signals.Breakouts) Table {
	var records [][]string
	for _, set := range []struct {
		level string
		rows  []signals.BreakoutRow
	}{
		{"R1", b.R1}, {"R2", b.R2}, {"S1", b.S1}, {"S2", b.S2},
	} {
		for _, r := range set.rows {
			records = append(records, []string{
				set.level, r.Symbol, r.Description, formatNum(r.Last), formatNum(r.ChangePct), formatNum(r.Volume),
				formatNum(r.R1), formatNum(r.R2), formatNum(r.S1), formatNum(r.S2),
			})
		}
	}
	return Table{
		Headers: []string{
			"Level", domain.ColSymbol, domain.ColDescription, domain.ColLast, domain.ColChangePct, domain.ColVolume,
			domain.ColR1, domain.ColR2, domain.ColS1, domain.ColS2,
		},
		Records: records,
	}
}

// RelationshipsTable renders correlated pairs.
func RelationshipsTable(pairs []domain.CorrelationPair) Table {
	records := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, []string{p.SymbolA, p.SymbolB, formatRatio(domain.Num(p.Corr)), string(p.Relation)})
	}
	return Table{Headers: []string{"Stock A", "Stock B", "Correlation", "Relation"}, Records: records}
}

// GroupPicksTable renders matched group picks.
func GroupPicksTable(picks []signals.GroupPick) Table {
	records := make([][]string, 0, len(picks))
	for _, p := range picks {
		records = append(records, []string{
			p.Symbol, p.Description, formatNum(p.ChangePct), formatNum(p.Volume),
			formatRatio(p.BuyRatio), string(p.Behavior), formatRatio(p.AIProb),
		})
	}
	return Table{
		Headers: []string{
			domain.ColSymbol, domain.ColDescription, domain.ColChangePct, domain.ColVolume,
			domain.ColBuyRatio, domain.ColBehavior, domain.ColAIProb,
		},
		Records: records,
	}
}
