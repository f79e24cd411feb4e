package signals

import (
	"egxcli/pkg/contracts/domain"
)

// Levels are classic floor-trader pivot levels.
type Levels struct {
	Pivot float64
	R1    float64
	R2    float64
	S1    float64
	S2    float64
}

// ComputeLevels derives pivot, support and resistance from a session range
// and reference close.
func ComputeLevels(high, low, refClose float64) Levels {
	p := (high + low + refClose) / 3
	return Levels{
		Pivot: p,
		R1:    2*p - low,
		S1:    2*p - high,
		R2:    p + (high - low),
		S2:    p - (high - low),
	}
}

// AddPivotLevels fills pivot levels on rows that carry none of them.
//
// The reference close is the previous close when the snapshot has a
// "Prev. Closed" column, otherwise the last price. A row is filled only when
// all five level fields are missing and high, low and the reference close are
// present; rows with any level already set are left untouched.
func AddPivotLevels(snap domain.IntradaySnapshot) domain.IntradaySnapshot {
	out := snap.Clone()
	usePrev := snap.Has(domain.ColPrevClosed)

	for i := range out.Rows {
		r := &out.Rows[i]
		if !domain.AllMissing(r.Pivot, r.R1, r.R2, r.S1, r.S2) {
			continue
		}
		ref := r.Last
		if usePrev {
			ref = r.PrevClose
		}
		if domain.AnyMissing(r.High, r.Low, ref) {
			continue
		}

		lv := ComputeLevels(r.High.Float(), r.Low.Float(), ref.Float())
		r.Pivot = domain.Num(lv.Pivot)
		r.R1 = domain.Num(lv.R1)
		r.R2 = domain.Num(lv.R2)
		r.S1 = domain.Num(lv.S1)
		r.S2 = domain.Num(lv.S2)
	}

	for _, col := range []string{domain.ColPivot, domain.ColR1, domain.ColR2, domain.ColS1, domain.ColS2} {
		out.Columns = out.Columns.With(col)
	}
	return out
}
