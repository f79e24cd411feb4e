package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egxcli/pkg/contracts/domain"
)

func TestParseSymbolList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "mixed separators", in: "COMI, HRHO؛ETEL;SWDY\nAMOC", want: []string{"COMI", "HRHO", "ETEL", "SWDY", "AMOC"}},
		{name: "duplicates keep first", in: "ETEL COMI ETEL comi", want: []string{"ETEL", "COMI", "comi"}},
		{name: "only separators", in: " ,;؛ \t", want: []string{}},
		{name: "empty", in: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSymbolList(tt.in))
		})
	}
}

func groupTable(scored bool) domain.SignalTable {
	row := func(symbol string, ai domain.Num) domain.SignalRow {
		return domain.SignalRow{IntradayRow: domain.IntradayRow{Symbol: symbol}, AIProb: ai, BuyRatio: nan}
	}
	return domain.SignalTable{
		Scored: scored,
		Rows: []domain.SignalRow{
			row("LOW", 0.3),
			row("TIE1", 0.6),
			row("HIGH", 0.9),
			row("TIE2", 0.6),
			row("OTHER", 0.95),
		},
	}
}

func pickSymbols(ps []GroupPick) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Symbol)
	}
	return out
}

func TestFilterGroupPicks(t *testing.T) {
	picks := FilterGroupPicks(groupTable(true), []string{"TIE2", "LOW", "HIGH", "TIE1", "TIE2", "MISSING"})
	require.Len(t, picks, 4)
	assert.Equal(t, []string{"HIGH", "TIE1", "TIE2", "LOW"}, pickSymbols(picks))
}

func TestFilterGroupPicks_NoMatches(t *testing.T) {
	picks := FilterGroupPicks(groupTable(true), []string{"NOPE", "NADA"})
	assert.NotNil(t, picks)
	assert.Empty(t, picks)
}

func TestFilterGroupPicks_UnscoredTable(t *testing.T) {
	picks := FilterGroupPicks(groupTable(false), []string{"HIGH", "LOW"})
	require.Len(t, picks, 2)
	assert.Equal(t, []string{"LOW", "HIGH"}, pickSymbols(picks), "table order kept")
	assert.Equal(t, domain.Num(0.5), picks[0].AIProb)
}
