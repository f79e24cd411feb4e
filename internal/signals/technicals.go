package signals

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"egxcli/pkg/contracts/domain"
)

// Technical indicator periods.
const (
	ShortMAPeriod  = 20
	LongMAPeriod   = 50
	VolumeMAPeriod = 20
	RSIPeriod      = 14
)

var (
	// ErrMissingCloseColumn is returned when a history has no Closed or Close column.
	ErrMissingCloseColumn = errors.New("history has no Closed/Close column")
	// ErrNoHistory is returned when a history has no dated bars.
	ErrNoHistory = errors.New("history has no dated bars")
)

// Technicals are indicator values at the most recent bar of a history.
type Technicals struct {
	Date  time.Time  `json:"date"`
	Close domain.Num `json:"close"`
	MA20  domain.Num `json:"ma20"`
	MA50  domain.Num `json:"ma50"`
	Vol20 domain.Num `json:"vol20"`
	RSI14 domain.Num `json:"rsi14"`
	// PrevClose is the last bar's previous close, when the file has one.
	PrevClose domain.Num `json:"prev_close"`
}

// calendarDay drops the time of day so bars stamped at different hours of
// the same session share a date.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sortedBars drops undated bars, truncates the rest to their calendar day
// and orders them by date. Bars of one day keep their file order.
func sortedBars(series domain.HistorySeries) []domain.HistoricalBar {
	bars := make([]domain.HistoricalBar, 0, len(series.Bars))
	for _, b := range series.Bars {
		if !b.Date.IsZero() {
			b.Date = calendarDay(b.Date)
			bars = append(bars, b)
		}
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	return bars
}

// ComputeTechnicals evaluates moving averages and RSI at the last dated bar.
// An indicator is missing when the history is shorter than its period or
// any value inside the window is missing.
func ComputeTechnicals(series domain.HistorySeries) (Technicals, error) {
	if !series.HasClose() {
		return Technicals{}, ErrMissingCloseColumn
	}
	bars := sortedBars(series)
	if len(bars) == 0 {
		return Technicals{}, ErrNoHistory
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.Float()
		volumes[i] = b.Volume.Float()
	}

	last := bars[len(bars)-1]
	tech := Technicals{
		Date:      last.Date,
		Close:     last.Close,
		MA20:      lastSMA(closes, ShortMAPeriod),
		MA50:      lastSMA(closes, LongMAPeriod),
		Vol20:     domain.Missing(),
		RSI14:     lastRSI(closes, RSIPeriod),
		PrevClose: domain.Missing(),
	}
	if series.Columns.Has(domain.ColVolume) {
		tech.Vol20 = lastSMA(volumes, VolumeMAPeriod)
	}
	if series.Columns.Has(domain.ColPrevClosed) {
		tech.PrevClose = last.PrevClose
	}
	return tech, nil
}

// lastSMA returns the simple moving average of the final period values.
func lastSMA(values []float64, period int) domain.Num {
	if period <= 0 || len(values) < period {
		return domain.Missing()
	}
	window := values[len(values)-period:]
	for _, v := range window {
		if math.IsNaN(v) {
			return domain.Missing()
		}
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(window)))
	if len(out) == 0 {
		return domain.Missing()
	}
	return domain.Num(out[len(out)-1])
}

// lastRSI computes RSI from simple averages of gains and losses over the
// final period changes. It is missing when the average loss is zero.
func lastRSI(closes []float64, period int) domain.Num {
	if len(closes) <= period {
		return domain.Missing()
	}
	window := closes[len(closes)-period-1:]
	gains := make([]float64, period)
	losses := make([]float64, period)
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		gains[i-1] = math.Max(delta, 0)
		losses[i-1] = math.Max(-delta, 0)
		if math.IsNaN(delta) {
			gains[i-1], losses[i-1] = math.NaN(), math.NaN()
		}
	}

	avgGain := lastSMA(gains, period)
	avgLoss := lastSMA(losses, period)
	if avgGain.IsMissing() || avgLoss.IsMissing() || avgLoss.Float() == 0 {
		return domain.Missing()
	}
	rs := avgGain.Float() / avgLoss.Float()
	return domain.Num(100 - 100/(1+rs))
}
