package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastRequest describes a household and the home it wants to buy.
type ForecastRequest struct {
	TargetPrice         decimal.Decimal    `json:"target_price"`
	DownPaymentPct      decimal.Decimal    `json:"down_payment_pct"`
	Years               int                `json:"years"`
	CurrentSavings      decimal.Decimal    `json:"current_savings"`
	MonthlyContribution decimal.Decimal    `json:"monthly_contribution"`
	RiskTier            string             `json:"risk_tier,omitempty"`
	Weights             []float64          `json:"weights,omitempty"`  // ordered like the configured assets; overrides RiskTier
	Holdings            map[string]float64 `json:"holdings,omitempty"` // ticker -> units held
	Statistic           string             `json:"statistic,omitempty"`
	NumSimulations      int                `json:"num_simulations,omitempty"`
	Seed                *uint64            `json:"seed,omitempty"`
}

// HoldingValuation is how one holding was priced.
type HoldingValuation struct {
	Ticker    string          `json:"ticker"`
	Quantity  float64         `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	Source    string          `json:"source"` // "eod" or "spot"
	PriceDate time.Time       `json:"price_date"`
}

// AssetWeight pairs a ticker with its allocation.
type AssetWeight struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// ForecastReport is the full result of a purchase forecast run.
type ForecastReport struct {
	RunID        string                `json:"run_id"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Request      ForecastRequest       `json:"request"`
	SavingsAlone bool                  `json:"savings_alone"`
	PriceDate    time.Time             `json:"price_date,omitempty"`
	Holdings     []HoldingValuation    `json:"holdings,omitempty"`
	Weights      []AssetWeight         `json:"weights,omitempty"`
	Signals      []AssetSignals        `json:"signals,omitempty"`
	HistoryDays  int                   `json:"history_days,omitempty"`
	Simulations  int                   `json:"simulations,omitempty"`
	TradingDays  int                   `json:"trading_days,omitempty"`
	Seed         uint64                `json:"seed,omitempty"`
	Statistic    string                `json:"statistic,omitempty"`
	Statistics   map[string]float64    `json:"statistics,omitempty"`
	Bands        []PercentileBand      `json:"bands,omitempty"`
	Outcome      *AffordabilityOutcome `json:"outcome"`
}
