package dataprocessing

import (
	"egxcli/pkg/contracts/domain"
)

// Kind identifies one of the three export types.
type Kind string

const (
	KindIntraday     Kind = "intraday"
	KindTransactions Kind = "transactions"
	KindCase         Kind = "case"
)

// intradayRenames maps exporter column names to canonical names.
var intradayRenames = map[string]string{
	"الرمز":                     domain.ColSymbol,
	"الإسم المختصر":             domain.ColShortDesc,
	"الاسم المختصر":             domain.ColShortDesc,
	"أخر سعر":                   domain.ColLast,
	"آخر سعر":                   domain.ColLast,
	"التغير %":                  domain.ColChangePct,
	"حجم التداول":               domain.ColVolume,
	"قيمة التداول":              domain.ColTurnover,
	"حجم السيولة الداخلة":       "Cash In Volume",
	"حجم السيولة الخارجة":       "Cash Out Volume",
	"الصفقات":                   domain.ColTrades,
	"مخطط السيولة %":            domain.ColRange,
	"(R1) المقاومة 1":           domain.ColR1,
	"(R2) المقاومة 2":           domain.ColR2,
	"(S1) الدعم 1":              domain.ColS1,
	"(S2) الدعم 2":              domain.ColS2,
	"الأدنى":                    domain.ColLow,
	"أعلى":                      domain.ColHigh,
	"فتح":                       domain.ColOpen,
	"إغلاق":                     domain.ColClose,
	"الأدنى خلال 52 أسبوع":      "52 week Low",
	"الأعلى خلال 52 أسبوع":      "52 week High",
	"نسبة الطلب على العرض":      "Bid Offer Ratio",
	"الطلب":                     "Bid",
	"العرض":                     "Offer",
	"كمية الطلب":                "Bid Qty.",
	"كمية العرض":                "Offer Qty.",
	"القطاع":                    domain.ColSector,
	"مضاعف ربحية السهم":         "P-E Ratio",
	"مضاعف القيمة الدفترية":     "P-B Ratio",
	"ربحية السهم":               "Earning Per Share",
	"% المدى":                   domain.ColRange,
	"صفقات السيولة الداخلة":     "Cash In Trades",
	"صفقات السيولة الخارجة":     "Cash Out Trades",
	"قيمة السيولة الخارجة":      domain.ColCashOutTurnover,
	"قيمة السيولة الداخلة":      domain.ColCashInTurnover,
	"مؤشر السيولة النقدية":      "Cash Flow Index",
	"نقطة الإرتكاز":             domain.ColPivot,
	"رسملة السوق بالآلاف":       "Mkt. Cap./1000",
	"تغير متوسط السعر المرجح %": "VWAP Change",
	"إقفال سابق":                domain.ColPrevClosed,
	"نسبة السيولة":              "Cash Map % Value",
}

var transactionRenames = map[string]string{
	"اسم السهم":     domain.ColDescription,
	"الإسم المختصر": domain.ColDescription,
	"الاسم":         domain.ColDescription,
	"الرمز":         domain.ColSymbol,
	"السعر":         domain.ColPrice,
	"النوع":         domain.ColSide,
	"التغير %":      domain.ColChangePct,
	"حجم التداول":   domain.ColVolume,
	"قيمة التداول":  domain.ColTurnover,
	"مُعرف التسلسل": domain.ColSequenceID,
	"الوقت":         domain.ColTime,
	"إتجاه":         domain.ColDirection,
	"اتجاه":         domain.ColDirection,
}

var caseRenames = map[string]string{
	"التاريخ":      domain.ColDate,
	"فتح":          domain.ColOpen,
	"أعلى":         domain.ColHigh,
	"الأدنى":       domain.ColLow,
	"مغلق":         domain.ColClosed,
	"إقفال سابق":   domain.ColPrevClosed,
	"التغير %":     domain.ColChgPct,
	"التغير":       domain.ColChg,
	"قيمة التداول": domain.ColTurnover,
	"حجم التداول":  domain.ColVolume,
}

// requiredTransactionColumns are synthesized empty when a log lacks them.
var requiredTransactionColumns = []string{
	domain.ColSymbol,
	domain.ColSide,
	domain.ColVolume,
	domain.ColTurnover,
}

// NormalizeIntraday renames intraday columns to the canonical schema.
func NormalizeIntraday(t Table) Table {
	return normalize(t, intradayRenames)
}

// NormalizeTransactions renames transaction columns and guarantees the
// Symbol, Side, Volume and Turnover columns exist.
func NormalizeTransactions(t Table) Table {
	out := normalize(t, transactionRenames)
	for _, col := range requiredTransactionColumns {
		if !out.Has(col) {
			out.Columns = append(out.Columns, col)
		}
	}
	return out
}

// NormalizeCase renames historical bar columns.
func NormalizeCase(t Table) Table {
	return normalize(t, caseRenames)
}

// Normalize dispatches on kind.
func Normalize(kind Kind, t Table) Table {
	switch kind {
	case KindIntraday:
		return NormalizeIntraday(t)
	case KindTransactions:
		return NormalizeTransactions(t)
	case KindCase:
		return NormalizeCase(t)
	default:
		return t
	}
}

// normalize applies renames. When several source columns land on the same
// canonical name the first one wins and the rest are dropped.
func normalize(t Table, renames map[string]string) Table {
	keep := make([]int, 0, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))

	for i, name := range t.Columns {
		canonical := name
		if mapped, ok := renames[name]; ok {
			canonical = mapped
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		keep = append(keep, i)
		cols = append(cols, canonical)
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(row) {
				out[j] = row[idx]
			}
		}
		rows[r] = out
	}

	return Table{Columns: cols, Rows: rows}
}
