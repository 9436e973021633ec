package forecast

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/hearth/internal/models"
)

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	mortgageMonths = decimal.NewFromInt(models.MortgageTermMonths)
)

// Evaluate projects net worth at the horizon and classifies the purchase.
//
// Monthly contributions accumulate as cash and are not invested; only the
// current holdings grow by growthMultiplier.
func Evaluate(in models.AffordabilityInputs, growthMultiplier float64) (*models.AffordabilityOutcome, error) {
	if err := validateInputs(in, growthMultiplier); err != nil {
		return nil, err
	}

	years := decimal.NewFromInt(int64(in.Years))
	accumulated := in.CurrentSavings.Add(in.MonthlyContribution.Mul(monthsPerYear).Mul(years))

	holdings := decimal.Zero
	for _, h := range in.Holdings {
		holdings = holdings.Add(h.Value)
	}

	projected := holdings.Mul(decimal.NewFromFloat(growthMultiplier))
	net := accumulated.Add(projected)
	down := in.DownPaymentPct.Div(hundred).Mul(in.TargetPrice)

	out := &models.AffordabilityOutcome{
		AccumulatedSavings:       accumulated,
		CurrentHoldingsValue:     holdings,
		ProjectedInvestmentValue: projected,
		TotalProjectedNetWorth:   net,
		DownPaymentAmount:        down,
		GrowthMultiplier:         growthMultiplier,
	}

	switch {
	case net.GreaterThanOrEqual(in.TargetPrice):
		out.Tier = models.TierFullPurchase
	case net.GreaterThanOrEqual(down):
		out.Tier = models.TierDownPayment
		monthly := MonthlyPayment(in.TargetPrice, down)
		out.EstimatedMonthlyPayment = &monthly
	default:
		out.Tier = models.TierInsufficient
	}

	return out, nil
}

// MonthlyPayment spreads the financed amount evenly over the mortgage term, without interest.
func MonthlyPayment(target, down decimal.Decimal) decimal.Decimal {
	return target.Sub(down).Div(mortgageMonths)
}

func validateInputs(in models.AffordabilityInputs, growth float64) error {
	if !in.TargetPrice.IsPositive() {
		return fmt.Errorf("%w: target price must be positive, got %s", ErrInvalidAffordabilityInput, in.TargetPrice)
	}
	if in.DownPaymentPct.IsNegative() || in.DownPaymentPct.GreaterThan(hundred) {
		return fmt.Errorf("%w: down payment must be 0-100%%, got %s", ErrInvalidAffordabilityInput, in.DownPaymentPct)
	}
	if in.Years <= 0 {
		return fmt.Errorf("%w: years must be positive, got %d", ErrInvalidAffordabilityInput, in.Years)
	}
	if in.CurrentSavings.IsNegative() {
		return fmt.Errorf("%w: savings must not be negative", ErrInvalidAffordabilityInput)
	}
	if in.MonthlyContribution.IsNegative() {
		return fmt.Errorf("%w: monthly contribution must not be negative", ErrInvalidAffordabilityInput)
	}
	for _, h := range in.Holdings {
		if h.Value.IsNegative() {
			return fmt.Errorf("%w: holding %s has negative value", ErrInvalidAffordabilityInput, h.Ticker)
		}
	}
	if growth < 0 || math.IsNaN(growth) || math.IsInf(growth, 0) {
		return fmt.Errorf("%w: growth multiplier must be a non-negative number, got %v", ErrInvalidAffordabilityInput, growth)
	}
	return nil
}
