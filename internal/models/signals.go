package models

import "time"

// TrendType classifies where the latest close sits against its moving averages.
type TrendType string

const (
	TrendBullish TrendType = "bullish"
	TrendBearish TrendType = "bearish"
	TrendNeutral TrendType = "neutral"
)

// AssetSignals summarizes the price history a forecast sampled from.
type AssetSignals struct {
	Ticker           string    `json:"ticker"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	Bars             int       `json:"bars"`
	LastClose        float64   `json:"last_close"`
	SMA50            float64   `json:"sma_50"`
	SMA200           float64   `json:"sma_200"`
	DistanceToSMA200 float64   `json:"distance_to_sma_200_pct"`
	High52Week       float64   `json:"high_52_week"`
	Low52Week        float64   `json:"low_52_week"`
	AnnualReturn     float64   `json:"annual_return"`     // compound annual growth over the window
	AnnualVolatility float64   `json:"annual_volatility"` // stdev of daily returns, annualized
	MaxDrawdown      float64   `json:"max_drawdown"`      // largest peak-to-trough fall, as a fraction
	Trend            TrendType `json:"trend"`
}
