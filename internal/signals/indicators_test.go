package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/hearth/internal/models"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		bars     []models.EODBar
		period   int
		expected float64
	}{
		{
			name:     "simple 3-day SMA",
			bars:     generateBars([]float64{10, 20, 30}),
			period:   3,
			expected: 20.0,
		},
		{
			name:     "uses the most recent closes",
			bars:     generateBars([]float64{10, 20, 30, 40, 50}),
			period:   3,
			expected: 40.0,
		},
		{
			name:     "insufficient data",
			bars:     generateBars([]float64{10, 20}),
			period:   5,
			expected: 0.0,
		},
		{
			name:     "zero period",
			bars:     generateBars([]float64{10, 20}),
			period:   0,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SMA(tt.bars, tt.period), 0.01)
		})
	}
}

func TestSMA_PrefersAdjustedClose(t *testing.T) {
	bars := generateBars([]float64{10, 20})
	bars[1].AdjClose = 10
	assert.InDelta(t, 10.0, SMA(bars, 2), 1e-9)

	bars[1].AdjClose = 0
	assert.InDelta(t, 15.0, SMA(bars, 2), 1e-9)
}

func TestDailyReturns(t *testing.T) {
	got := DailyReturns(generateBars([]float64{100, 110, 99}))
	assert.InDeltaSlice(t, []float64{0.1, -0.1}, got, 1e-9)

	assert.Nil(t, DailyReturns(generateBars([]float64{100})))
}

func TestAnnualVolatility(t *testing.T) {
	// sample stdev of {0.1, -0.1} is sqrt(0.02), scaled by sqrt(252)
	got := AnnualVolatility(generateBars([]float64{100, 110, 99}), 252)
	assert.InDelta(t, 2.2450, got, 0.001)

	steady := generateTrendBars(100, 1.01, 30)
	assert.InDelta(t, 0.0, AnnualVolatility(steady, 252), 1e-9)

	assert.Equal(t, 0.0, AnnualVolatility(generateBars([]float64{100, 110}), 252), "one return has no spread")
	assert.Equal(t, 0.0, AnnualVolatility(generateBars([]float64{100, 110, 99}), 0))
}

func TestAnnualReturn(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []models.EODBar{
		{Date: start, Close: 100},
		{Date: start.AddDate(2, 0, 0), Close: 121},
	}
	assert.InDelta(t, 0.10, AnnualReturn(bars), 0.001)

	assert.Equal(t, 0.0, AnnualReturn(bars[:1]))

	bars[0].Close = 0
	assert.Equal(t, 0.0, AnnualReturn(bars), "non-positive start price")
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		expected float64
	}{
		{"deepest fall wins", []float64{100, 120, 90, 130, 117}, 0.25},
		{"monotonic rise", []float64{100, 101, 102, 103}, 0},
		{"single bar", []float64{100}, 0},
		{"fall from first bar", []float64{100, 50}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxDrawdown(generateBars(tt.closes)), 1e-9)
		})
	}
}

func TestHighLow52Week(t *testing.T) {
	bars := generateBars([]float64{10, 20, 30})
	assert.InDelta(t, 30.0, High52Week(bars), 1e-9)
	assert.InDelta(t, 10.0, Low52Week(bars), 1e-9)

	// Daily bars from 2024-01-01; the year before the last bar starts at day 33
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = 10
		if i < 30 {
			closes[i] = 1000
		}
	}
	long := generateBars(closes)
	assert.InDelta(t, 10.0, High52Week(long), 1e-9)
	assert.InDelta(t, 10.0, Low52Week(long), 1e-9)

	assert.Equal(t, 0.0, Low52Week(nil))
	assert.Equal(t, 0.0, High52Week(nil))
}

func TestHighLow52Week_WindowIsCalendarYear(t *testing.T) {
	// 365 every-day bars span a year; a 252-bar window would miss day 20
	closes := make([]float64, 365)
	for i := range closes {
		closes[i] = 100
	}
	closes[20] = 150
	closes[40] = 60
	bars := generateBars(closes)

	assert.InDelta(t, 150.0, High52Week(bars), 1e-9)
	assert.InDelta(t, 60.0, Low52Week(bars), 1e-9)
}

func TestHighLow52Week_UsesAdjustedClose(t *testing.T) {
	bars := generateBars([]float64{20, 10})
	bars[0].AdjClose = 5 // pre-split
	assert.Equal(t, 10.0, High52Week(bars))
	assert.Equal(t, 5.0, Low52Week(bars))

	bars = []models.EODBar{{Close: 12}, {Close: 8}}
	assert.Equal(t, 12.0, High52Week(bars))
	assert.Equal(t, 8.0, Low52Week(bars))
}

func TestDistanceToSMA(t *testing.T) {
	assert.InDelta(t, 10.0, DistanceToSMA(110, 100), 1e-9)
	assert.InDelta(t, -5.0, DistanceToSMA(95, 100), 1e-9)
	assert.Equal(t, 0.0, DistanceToSMA(95, 0))
}

func TestDetermineTrend(t *testing.T) {
	tests := []struct {
		name                 string
		price, sma50, sma200 float64
		expected             models.TrendType
	}{
		{"bullish", 110, 105, 100, models.TrendBullish},
		{"bearish", 90, 95, 100, models.TrendBearish},
		{"mixed", 105, 95, 100, models.TrendNeutral},
		{"not enough history", 105, 100, 0, models.TrendNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetermineTrend(tt.price, tt.sma50, tt.sma200))
		})
	}
}

func TestCompute(t *testing.T) {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	bars := generateBars(closes)

	got := Compute("SPY.US", bars, 252)

	assert.Equal(t, "SPY.US", got.Ticker)
	assert.Equal(t, 260, got.Bars)
	assert.Equal(t, bars[0].Date, got.From)
	assert.Equal(t, bars[259].Date, got.To)
	assert.Equal(t, 359.0, got.LastClose)
	assert.InDelta(t, 334.5, got.SMA50, 1e-9)
	assert.InDelta(t, 259.5, got.SMA200, 1e-9)
	assert.Equal(t, models.TrendBullish, got.Trend)
	assert.Equal(t, 0.0, got.MaxDrawdown)
	assert.Greater(t, got.AnnualReturn, 0.0)
	assert.Greater(t, got.AnnualVolatility, 0.0)
	assert.InDelta(t, 359.0, got.High52Week, 1e-9)
	assert.InDelta(t, 100.0, got.Low52Week, 1e-9)
}

func TestCompute_Empty(t *testing.T) {
	got := Compute("AGG.US", nil, 252)
	assert.Equal(t, "AGG.US", got.Ticker)
	assert.Equal(t, 0, got.Bars)
	assert.Equal(t, models.TrendNeutral, got.Trend)
}

// generateBars builds ascending daily bars from the given closes.
func generateBars(closes []float64) []models.EODBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.EODBar, len(closes))
	for i, close := range closes {
		bars[i] = models.EODBar{
			Date:     start.AddDate(0, 0, i),
			Open:     close - 0.5,
			High:     close + 0.5,
			Low:      close - 0.5,
			Close:    close,
			AdjClose: close,
			Volume:   1000000,
		}
	}
	return bars
}

// generateTrendBars compounds the price by factor each day.
func generateTrendBars(startPrice, factor float64, days int) []models.EODBar {
	closes := make([]float64, days)
	price := startPrice
	for i := range closes {
		closes[i] = price
		price *= factor
	}
	return generateBars(closes)
}
