package signals

import (
	"github.com/bobmcallan/hearth/internal/models"
)

// Compute summarizes ascending daily bars for one ticker.
func Compute(ticker string, bars []models.EODBar, tradingDays int) models.AssetSignals {
	out := models.AssetSignals{Ticker: ticker, Bars: len(bars), Trend: models.TrendNeutral}
	if len(bars) == 0 {
		return out
	}

	last := bars[len(bars)-1]
	out.From = bars[0].Date
	out.To = last.Date
	out.LastClose = closeOf(last)

	out.SMA50 = SMA(bars, 50)
	out.SMA200 = SMA(bars, 200)
	out.DistanceToSMA200 = DistanceToSMA(out.LastClose, out.SMA200)
	out.Trend = DetermineTrend(out.LastClose, out.SMA50, out.SMA200)

	out.High52Week = High52Week(bars)
	out.Low52Week = Low52Week(bars)
	out.AnnualReturn = AnnualReturn(bars)
	out.AnnualVolatility = AnnualVolatility(bars, tradingDays)
	out.MaxDrawdown = MaxDrawdown(bars)

	return out
}
