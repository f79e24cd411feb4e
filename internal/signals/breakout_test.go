package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egxcli/pkg/contracts/domain"
)

func leveled(symbol string, last, change, r1, r2, s1, s2 domain.Num) domain.IntradayRow {
	row := intradayRow(symbol, last, nan, nan, nan)
	row.ChangePct = change
	row.R1, row.R2, row.S1, row.S2 = r1, r2, s1, s2
	row.Pivot = 100
	return row
}

func symbolsOf(rows []BreakoutRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Symbol)
	}
	return out
}

func TestFindBreakouts_InclusiveBoundaries(t *testing.T) {
	snap := domain.IntradaySnapshot{
		Columns: domain.ColumnSet{domain.ColSymbol, domain.ColLast},
		Rows: []domain.IntradayRow{
			leveled("ATR1", 110, 1, 110, 120, 90, 80),
			leveled("ATS1", 90, -1, 110, 120, 90, 80),
			leveled("INSIDE", 100, 0, 110, 120, 90, 80),
			leveled("NOLEVEL", 500, 3, nan, nan, nan, nan),
		},
	}

	b := FindBreakouts(snap)
	assert.Equal(t, []string{"ATR1"}, symbolsOf(b.R1))
	assert.Empty(t, b.R2)
	assert.Equal(t, []string{"ATS1"}, symbolsOf(b.S1))
	assert.Empty(t, b.S2)
	assert.Equal(t, 2, b.Total())
}

func TestFindBreakouts_MultipleSetsAndOrdering(t *testing.T) {
	snap := domain.IntradaySnapshot{
		Columns: domain.ColumnSet{domain.ColSymbol, domain.ColLast},
		Rows: []domain.IntradayRow{
			leveled("UP1", 125, 2, 110, 120, 90, 80),
			leveled("UP2", 115, 5, 110, 120, 90, 80),
			leveled("UPNAN", 115, nan, 110, 120, 90, 80),
			leveled("DN1", 75, -2, 110, 120, 90, 80),
			leveled("DN2", 85, -6, 110, 120, 90, 80),
		},
	}

	b := FindBreakouts(snap)
	assert.Equal(t, []string{"UP2", "UP1", "UPNAN"}, symbolsOf(b.R1))
	assert.Equal(t, []string{"UP1"}, symbolsOf(b.R2))
	assert.Equal(t, []string{"DN2", "DN1"}, symbolsOf(b.S1))
	assert.Equal(t, []string{"DN1"}, symbolsOf(b.S2))
}

func TestFindBreakouts_ComputesMissingLevels(t *testing.T) {
	row := intradayRow("COMI", 111, 110, 90, 100)
	row.ChangePct = 4
	snap := domain.IntradaySnapshot{
		Columns: domain.ColumnSet{domain.ColSymbol, domain.ColLast, domain.ColHigh, domain.ColLow, domain.ColPrevClosed},
		Rows:    []domain.IntradayRow{row},
	}

	b := FindBreakouts(snap)
	require.Len(t, b.R1, 1)
	assert.InDelta(t, 110, b.R1[0].R1.Float(), 1e-9)
	assert.Empty(t, b.R2)
}
