package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single dated close price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// AssetPriceSeries is the close history of one asset, ascending by date.
type AssetPriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// AlignedPricePanel holds closes for several assets on the dates where all of them traded.
// Every Closes[ticker] slice has len(Dates) entries.
type AlignedPricePanel struct {
	Tickers []string             `json:"tickers"`
	Dates   []time.Time          `json:"dates"`
	Closes  map[string][]float64 `json:"closes"`
}

// Rows returns the number of aligned dates.
func (p *AlignedPricePanel) Rows() int {
	return len(p.Dates)
}

// ReturnMatrix holds simple daily returns per asset, one column per ticker.
type ReturnMatrix struct {
	Tickers []string             `json:"tickers"`
	Returns map[string][]float64 `json:"returns"`
}

// Rows returns the number of return observations per asset.
func (m *ReturnMatrix) Rows() int {
	if len(m.Tickers) == 0 {
		return 0
	}
	return len(m.Returns[m.Tickers[0]])
}

// PortfolioWeights are allocation fractions ordered like ReturnMatrix.Tickers.
type PortfolioWeights []float64

// Sum returns the total allocation.
func (w PortfolioWeights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// SimulationResult holds one cumulative-return path per row.
// Each row has TradingDays+1 entries and starts at 1.0.
type SimulationResult struct {
	Simulations int         `json:"simulations"`
	TradingDays int         `json:"trading_days"`
	Cumulative  [][]float64 `json:"cumulative"`
}

// Final returns the last cumulative value of every path.
func (r *SimulationResult) Final() []float64 {
	out := make([]float64, 0, len(r.Cumulative))
	for _, row := range r.Cumulative {
		if len(row) == 0 {
			continue
		}
		out = append(out, row[len(row)-1])
	}
	return out
}

// Statistic names accepted by SummaryStatistics.Get.
const (
	StatMean      = "mean"
	StatStd       = "std"
	StatMin       = "min"
	StatMax       = "max"
	StatP25       = "25th_percentile"
	StatP50       = "50th_percentile"
	StatP75       = "75th_percentile"
	StatCILower95 = "ci_lower_95"
	StatCIUpper95 = "ci_upper_95"
)

// StatisticNames lists the named statistics in display order.
func StatisticNames() []string {
	return []string{StatMean, StatStd, StatMin, StatMax, StatP25, StatP50, StatP75, StatCILower95, StatCIUpper95}
}

// SummaryStatistics describes the distribution of final cumulative returns.
type SummaryStatistics struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	P25       float64 `json:"25th_percentile"`
	P50       float64 `json:"50th_percentile"`
	P75       float64 `json:"75th_percentile"`
	CILower95 float64 `json:"ci_lower_95"`
	CIUpper95 float64 `json:"ci_upper_95"`
}

// Get returns the statistic with the given name.
func (s *SummaryStatistics) Get(name string) (float64, bool) {
	switch name {
	case StatMean:
		return s.Mean, true
	case StatStd:
		return s.Std, true
	case StatMin:
		return s.Min, true
	case StatMax:
		return s.Max, true
	case StatP25:
		return s.P25, true
	case StatP50:
		return s.P50, true
	case StatP75:
		return s.P75, true
	case StatCILower95:
		return s.CILower95, true
	case StatCIUpper95:
		return s.CIUpper95, true
	}
	return 0, false
}

// AsMap returns every named statistic keyed by name.
func (s *SummaryStatistics) AsMap() map[string]float64 {
	out := make(map[string]float64, 9)
	for _, name := range StatisticNames() {
		v, _ := s.Get(name)
		out[name] = v
	}
	return out
}

// PercentileBand is the cross-path distribution of cumulative returns on one day.
type PercentileBand struct {
	Day int     `json:"day"`
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// Tier classifies an affordability outcome.
type Tier string

const (
	TierFullPurchase Tier = "FULL_PURCHASE_AFFORDABLE"
	TierDownPayment  Tier = "DOWN_PAYMENT_AFFORDABLE"
	TierInsufficient Tier = "INSUFFICIENT"
)

// MortgageTermMonths is the fixed 30-year term used for the monthly payment estimate.
const MortgageTermMonths = 360

// HoldingValue is the current market value of one holding.
type HoldingValue struct {
	Ticker string          `json:"ticker"`
	Value  decimal.Decimal `json:"value"`
}

// AffordabilityInputs are the money inputs to the affordability decision.
type AffordabilityInputs struct {
	CurrentSavings      decimal.Decimal `json:"current_savings"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	Years               int             `json:"years"`
	Holdings            []HoldingValue  `json:"holdings"`
	TargetPrice         decimal.Decimal `json:"target_price"`
	DownPaymentPct      decimal.Decimal `json:"down_payment_pct"`
}

// AffordabilityOutcome is the tier decision and the figures behind it.
type AffordabilityOutcome struct {
	Tier                     Tier             `json:"tier"`
	AccumulatedSavings       decimal.Decimal  `json:"accumulated_savings"`
	CurrentHoldingsValue     decimal.Decimal  `json:"current_holdings_value"`
	ProjectedInvestmentValue decimal.Decimal  `json:"projected_investment_value"`
	TotalProjectedNetWorth   decimal.Decimal  `json:"total_projected_net_worth"`
	DownPaymentAmount        decimal.Decimal  `json:"down_payment_amount"`
	EstimatedMonthlyPayment  *decimal.Decimal `json:"estimated_monthly_payment,omitempty"`
	GrowthMultiplier         float64          `json:"growth_multiplier"`
}
