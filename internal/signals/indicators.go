// Package signals computes descriptive statistics over daily price history.
// Bars are expected in ascending date order.
package signals

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/hearth/internal/models"
)

// closeOf prefers the adjusted close so splits and dividends do not read as moves.
func closeOf(b models.EODBar) float64 {
	if b.AdjClose > 0 {
		return b.AdjClose
	}
	return b.Close
}

// SMA calculates the simple moving average of the last period closes.
func SMA(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += closeOf(b)
	}
	return sum / float64(period)
}

// DailyReturns returns simple close-to-close returns.
func DailyReturns(bars []models.EODBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := closeOf(bars[i-1])
		if prev <= 0 {
			continue
		}
		out = append(out, closeOf(bars[i])/prev-1)
	}
	return out
}

// AnnualVolatility annualizes the standard deviation of daily returns.
func AnnualVolatility(bars []models.EODBar, tradingDays int) float64 {
	returns := DailyReturns(bars)
	if len(returns) < 2 || tradingDays <= 0 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(float64(tradingDays))
}

// AnnualReturn is the compound annual growth rate between the first and last close.
func AnnualReturn(bars []models.EODBar) float64 {
	if len(bars) < 2 {
		return 0
	}
	first, last := closeOf(bars[0]), closeOf(bars[len(bars)-1])
	years := bars[len(bars)-1].Date.Sub(bars[0].Date).Hours() / 24 / 365.25
	if first <= 0 || last <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(last/first, 1/years) - 1
}

// MaxDrawdown returns the largest peak-to-trough decline as a positive fraction.
func MaxDrawdown(bars []models.EODBar) float64 {
	peak, worst := 0.0, 0.0
	for _, b := range bars {
		c := closeOf(b)
		if c > peak {
			peak = c
			continue
		}
		if peak > 0 {
			if dd := (peak - c) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// High52Week returns the highest close in the year ending at the last bar.
func High52Week(bars []models.EODBar) float64 {
	high := 0.0
	for _, b := range lastYear(bars) {
		if c := closeOf(b); c > high {
			high = c
		}
	}
	return high
}

// Low52Week returns the lowest positive close in the year ending at the last bar.
func Low52Week(bars []models.EODBar) float64 {
	low := math.MaxFloat64
	for _, b := range lastYear(bars) {
		if c := closeOf(b); c > 0 && c < low {
			low = c
		}
	}
	if low == math.MaxFloat64 {
		return 0
	}
	return low
}

// DistanceToSMA returns percentage distance from the SMA.
func DistanceToSMA(currentPrice, sma float64) float64 {
	if sma == 0 {
		return 0
	}
	return ((currentPrice - sma) / sma) * 100
}

// DetermineTrend classifies the overall trend.
func DetermineTrend(currentPrice, sma50, sma200 float64) models.TrendType {
	if sma50 == 0 || sma200 == 0 {
		return models.TrendNeutral
	}

	// BULLISH: Price > SMA200 AND SMA50 > SMA200
	if currentPrice > sma200 && sma50 > sma200 {
		return models.TrendBullish
	}

	// BEARISH: Price < SMA200 AND SMA50 < SMA200
	if currentPrice < sma200 && sma50 < sma200 {
		return models.TrendBearish
	}

	return models.TrendNeutral
}

// lastYear keeps the bars dated after one calendar year before the last bar,
// so weekday and every-day markets cover the same span.
func lastYear(bars []models.EODBar) []models.EODBar {
	if len(bars) == 0 {
		return nil
	}
	cutoff := bars[len(bars)-1].Date.AddDate(-1, 0, 0)
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(cutoff) })
	return bars[i:]
}
