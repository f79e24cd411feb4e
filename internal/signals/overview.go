package signals

import (
	"sort"

	"egxcli/pkg/contracts/domain"
)

// DefaultOverviewSize is the length of each top list in the market overview.
const DefaultOverviewSize = 10

// SectorVolume is the traded volume of one sector.
type SectorVolume struct {
	Sector string  `json:"sector"`
	Volume float64 `json:"volume"`
}

// Overview summarizes the session across stocks, excluding market indices.
type Overview struct {
	Stocks     int                  `json:"stocks"`
	Gainers    []domain.IntradayRow `json:"top_gainers"`
	Losers     []domain.IntradayRow `json:"top_losers"`
	ByVolume   []domain.IntradayRow `json:"top_volume"`
	ByTurnover []domain.IntradayRow `json:"top_turnover"`
	ByCashIn   []domain.IntradayRow `json:"top_cash_in"`
	ByCashOut  []domain.IntradayRow `json:"top_cash_out"`
	Sectors    []SectorVolume       `json:"sectors,omitempty"`
	HasSector  bool                 `json:"has_sector"`
}

// StockRows drops market index symbols.
func StockRows(rows []domain.IntradayRow) []domain.IntradayRow {
	out := make([]domain.IntradayRow, 0, len(rows))
	for _, r := range rows {
		if domain.IsIndexSymbol(r.Symbol) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildOverview ranks the session's stocks. Cash flow columns absent from
// the snapshot count as zero. Each list holds at most n rows.
func BuildOverview(snap domain.IntradaySnapshot, n int) Overview {
	if n <= 0 {
		n = DefaultOverviewSize
	}

	stocks := StockRows(snap.Rows)
	for i := range stocks {
		if !snap.Has(domain.ColCashInTurnover) {
			stocks[i].CashInTurnover = 0
		}
		if !snap.Has(domain.ColCashOutTurnover) {
			stocks[i].CashOutTurnover = 0
		}
	}

	ov := Overview{
		Stocks:     len(stocks),
		Gainers:    topBy(stocks, n, true, func(r domain.IntradayRow) domain.Num { return r.ChangePct }),
		Losers:     topBy(stocks, n, false, func(r domain.IntradayRow) domain.Num { return r.ChangePct }),
		ByVolume:   topBy(stocks, n, true, func(r domain.IntradayRow) domain.Num { return r.Volume }),
		ByTurnover: topBy(stocks, n, true, func(r domain.IntradayRow) domain.Num { return r.Turnover }),
		ByCashIn:   topBy(stocks, n, true, func(r domain.IntradayRow) domain.Num { return r.CashInTurnover }),
		ByCashOut:  topBy(stocks, n, true, func(r domain.IntradayRow) domain.Num { return r.CashOutTurnover }),
		HasSector:  snap.Has(domain.ColSector),
	}
	if ov.HasSector {
		ov.Sectors = sectorVolumes(stocks)
	}
	return ov
}

func topBy(rows []domain.IntradayRow, n int, descending bool, key func(domain.IntradayRow) domain.Num) []domain.IntradayRow {
	sorted := make([]domain.IntradayRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessNaNLast(key(sorted[i]).Float(), key(sorted[j]).Float(), descending)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// sectorVolumes totals volume per sector, largest first. Rows without a
// sector are not counted.
func sectorVolumes(rows []domain.IntradayRow) []SectorVolume {
	totals := make(map[string]float64)
	var order []string
	for _, r := range rows {
		if r.Sector == "" {
			continue
		}
		if _, ok := totals[r.Sector]; !ok {
			order = append(order, r.Sector)
		}
		totals[r.Sector] += r.Volume.Or(0)
	}

	out := make([]SectorVolume, 0, len(order))
	for _, s := range order {
		out = append(out, SectorVolume{Sector: s, Volume: totals[s]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume > out[j].Volume
	})
	return out
}
