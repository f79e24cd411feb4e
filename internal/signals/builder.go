package signals

import (
	"egxcli/pkg/contracts/domain"
)

// BuildSignals left-joins the snapshot with the transaction aggregates on
// symbol. Snapshot rows without transactions keep missing flow fields.
//
// When the snapshot has no "Cash in Turnover" column, cash-in is
// approximated by the session's total turnover (zero when absent). When it
// has no "Cash Out Turnover" column, cash-out is zero.
func BuildSignals(snap domain.IntradaySnapshot, aggs []domain.TransactionAggregate) domain.SignalTable {
	bySymbol := make(map[string]domain.TransactionAggregate, len(aggs))
	for _, a := range aggs {
		bySymbol[a.Symbol] = a
	}

	hasCashIn := snap.Has(domain.ColCashInTurnover)
	hasCashOut := snap.Has(domain.ColCashOutTurnover)

	rows := make([]domain.SignalRow, 0, len(snap.Rows))
	for _, in := range snap.Rows {
		row := domain.SignalRow{
			IntradayRow:   in,
			TotalVolume:   domain.Missing(),
			TotalTurnover: domain.Missing(),
			BuyVolume:     domain.Missing(),
			SellVolume:    domain.Missing(),
			BuyRatio:      domain.Missing(),
			AIProb:        domain.Missing(),
		}
		if agg, ok := bySymbol[in.Symbol]; ok {
			row.HasFlow = true
			row.TotalVolume = domain.Num(agg.TotalVolume)
			row.TotalTurnover = domain.Num(agg.TotalTurnover)
			row.BuyVolume = domain.Num(agg.BuyVolume)
			row.SellVolume = domain.Num(agg.SellVolume)
			row.BuyRatio = agg.BuyRatio
			row.Behavior = agg.Behavior
		}

		if !hasCashIn {
			row.CashInTurnover = domain.Num(row.TotalTurnover.Or(0))
		}
		if !hasCashOut {
			row.CashOutTurnover = 0
		}
		rows = append(rows, row)
	}

	cols := snap.Columns.With(domain.ColCashInTurnover).With(domain.ColCashOutTurnover)
	return domain.SignalTable{Rows: rows, Columns: cols}
}
