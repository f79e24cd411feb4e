package signals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egxcli/pkg/contracts/domain"
)

type fakeHistory struct {
	series map[string]domain.HistorySeries
	calls  []string
}

func (f *fakeHistory) LoadHistory(_ context.Context, symbol string) (domain.HistorySeries, error) {
	f.calls = append(f.calls, symbol)
	s, ok := f.series[symbol]
	if !ok {
		return domain.HistorySeries{}, fmt.Errorf("open %s.csv: %w", symbol, os.ErrNotExist)
	}
	return s, nil
}

var closedColumns = domain.ColumnSet{domain.ColDate, domain.ColClosed}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// history builds a series from a close function over days [from, to).
func history(symbol string, from, to int, closeAt func(i int) float64) domain.HistorySeries {
	bars := make([]domain.HistoricalBar, 0, to-from)
	for i := from; i < to; i++ {
		bars = append(bars, domain.HistoricalBar{Date: day(i), Close: domain.Num(closeAt(i))})
	}
	return domain.HistorySeries{Symbol: symbol, Bars: bars, Columns: closedColumns}
}

func wave(i int) float64 { return 100 + 5*math.Sin(float64(i)/3) + float64(i%7) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func universeSnap(symbols ...string) domain.IntradaySnapshot {
	rows := make([]domain.IntradayRow, 0, len(symbols))
	for i, s := range symbols {
		rows = append(rows, domain.IntradayRow{Symbol: s, Volume: domain.Num(1000 - i)})
	}
	return domain.IntradaySnapshot{Rows: rows}
}

func TestCorrelationEngine_PositiveAndNegative(t *testing.T) {
	hist := &fakeHistory{series: map[string]domain.HistorySeries{
		"AAA": history("AAA", 0, 80, wave),
		"BBB": history("BBB", 0, 80, func(i int) float64 { return 2 * wave(i) }),
		"CCC": history("CCC", 0, 80, func(i int) float64 { return 400 - wave(i) }),
	}}
	engine := NewCorrelationEngine(hist, quietLogger())

	pairs, err := engine.BuildRelationships(context.Background(), universeSnap("AAA", "BBB", "CCC", "NOFILE"), DefaultCorrelationParams())
	require.NoError(t, err)
	require.NotEmpty(t, pairs)

	first := pairs[0]
	assert.Equal(t, "AAA", first.SymbolA)
	assert.Equal(t, "BBB", first.SymbolB)
	assert.InDelta(t, 1.0, first.Corr, 1e-9)
	assert.Equal(t, domain.RelationPositive, first.Relation)

	for _, p := range pairs {
		assert.NotEqual(t, p.SymbolA, p.SymbolB)
		assert.GreaterOrEqual(t, math.Abs(p.Corr), DefaultMinAbsCorr)
		if p.Corr < 0 {
			assert.Equal(t, domain.RelationNegative, p.Relation)
		}
	}
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, math.Abs(pairs[i-1].Corr), math.Abs(pairs[i].Corr))
	}
	assert.Contains(t, hist.calls, "NOFILE", "missing files are attempted and skipped")
}

func TestCorrelationEngine_AlignsOnCalendarDay(t *testing.T) {
	afternoon := history("BBB", 0, 80, func(i int) float64 { return 2 * wave(i) })
	for i := range afternoon.Bars {
		afternoon.Bars[i].Date = afternoon.Bars[i].Date.Add(15 * time.Hour)
	}
	hist := &fakeHistory{series: map[string]domain.HistorySeries{
		"AAA": history("AAA", 0, 80, wave),
		"BBB": afternoon,
	}}
	engine := NewCorrelationEngine(hist, quietLogger())

	pairs, err := engine.BuildRelationships(context.Background(), universeSnap("AAA", "BBB"), DefaultCorrelationParams())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.InDelta(t, 1.0, pairs[0].Corr, 1e-9)
}

func TestCorrelationEngine_TooFewAlignedDays(t *testing.T) {
	hist := &fakeHistory{series: map[string]domain.HistorySeries{
		"AAA": history("AAA", 0, 100, wave),
		// Overlaps AAA on 30 days only, shrinking the common window.
		"SPARSE": history("SPARSE", 70, 100, wave),
	}}
	engine := NewCorrelationEngine(hist, quietLogger())

	pairs, err := engine.BuildRelationships(context.Background(), universeSnap("AAA", "SPARSE"), DefaultCorrelationParams())
	require.NoError(t, err)
	assert.NotNil(t, pairs)
	assert.Empty(t, pairs)
}

func TestCorrelationEngine_ThresholdIsInclusive(t *testing.T) {
	noisy := func(i int) float64 { return wave(i) + float64((i*37)%11)/4 }
	a := history("AAA", 0, 70, wave)
	b := history("BBB", 0, 70, noisy)

	ra, _ := DailyReturns(a)
	rb, _ := DailyReturns(b)
	dates := alignDates([]returnSeries{{"AAA", ra}, {"BBB", rb}})
	x := make([]float64, len(dates))
	y := make([]float64, len(dates))
	for i, d := range dates {
		x[i], y[i] = ra[d], rb[d]
	}
	c := pearson(x, y)
	require.False(t, math.IsNaN(c))

	hist := &fakeHistory{series: map[string]domain.HistorySeries{"AAA": a, "BBB": b}}
	engine := NewCorrelationEngine(hist, quietLogger())

	params := CorrelationParams{MinDays: 60, MinAbsCorr: math.Abs(c), TopN: 40}
	pairs, err := engine.BuildRelationships(context.Background(), universeSnap("AAA", "BBB"), params)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, c, pairs[0].Corr)

	params.MinAbsCorr = math.Nextafter(math.Abs(c), 2)
	pairs, err = engine.BuildRelationships(context.Background(), universeSnap("AAA", "BBB"), params)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestCorrelationEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewCorrelationEngine(&fakeHistory{}, quietLogger())

	_, err := engine.BuildRelationships(ctx, universeSnap("AAA"), DefaultCorrelationParams())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUniverse(t *testing.T) {
	snap := domain.IntradaySnapshot{Rows: []domain.IntradayRow{
		{Symbol: "LOW", Volume: 10},
		{Symbol: "NOVOL", Volume: nan},
		{Symbol: "HIGH", Volume: 500},
		{Symbol: "HIGH", Volume: 400},
		{Symbol: "MID", Volume: 100},
	}}
	assert.Equal(t, []string{"HIGH", "MID", "LOW"}, Universe(snap, 3))
	assert.Equal(t, []string{"HIGH", "MID", "LOW", "NOVOL"}, Universe(snap, 10))
	assert.Empty(t, Universe(snap, 0))
	assert.Empty(t, Universe(snap, -1))
}

func TestDailyReturns(t *testing.T) {
	series := domain.HistorySeries{
		Columns: closedColumns,
		Bars: []domain.HistoricalBar{
			{Date: day(2), Close: 110},
			{Date: day(0), Close: 100},
			{Date: time.Time{}, Close: 999},
			{Date: day(1), Close: nan},
			{Date: day(2), Close: 50},
			{Date: day(3), Close: 121},
		},
	}

	rets, ok := DailyReturns(series)
	require.True(t, ok)
	require.Len(t, rets, 4)
	assert.True(t, math.IsNaN(rets[day(0)]))
	assert.True(t, math.IsNaN(rets[day(1)]))
	assert.True(t, math.IsNaN(rets[day(2)]), "previous close missing")
	assert.InDelta(t, 0.1, rets[day(3)], 1e-9, "first bar of a repeated date wins")

	_, ok = DailyReturns(domain.HistorySeries{Columns: domain.ColumnSet{domain.ColDate}})
	assert.False(t, ok)
}

func TestDailyReturns_SameDayDifferentTimes(t *testing.T) {
	series := domain.HistorySeries{
		Columns: closedColumns,
		Bars: []domain.HistoricalBar{
			{Date: day(0).Add(10 * time.Hour), Close: 100},
			{Date: day(1).Add(15 * time.Hour), Close: 110},
			{Date: day(1).Add(9 * time.Hour), Close: 90},
			{Date: day(2).Add(12 * time.Hour), Close: 121},
		},
	}

	rets, ok := DailyReturns(series)
	require.True(t, ok)
	require.Len(t, rets, 3)
	assert.InDelta(t, 0.1, rets[day(1)], 1e-9, "first bar of the day in file order wins")
	assert.InDelta(t, 0.1, rets[day(2)], 1e-9)
}
