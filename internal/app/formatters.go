package app

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/hearth/internal/models"
)

// formatMoney renders a USD amount with grouping, e.g. "$650,000.00".
func formatMoney(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, money.USD).Display()
}

func formatMoneyFloat(v float64) string {
	return formatMoney(decimal.NewFromFloat(v))
}

func formatMultiple(v float64) string {
	return fmt.Sprintf("%.3fx", v)
}

func tierLabel(t models.Tier) string {
	switch t {
	case models.TierFullPurchase:
		return "Full purchase affordable"
	case models.TierDownPayment:
		return "Down payment affordable"
	case models.TierInsufficient:
		return "Insufficient"
	}
	return string(t)
}

// formatForecastReport formats a forecast report as markdown
func formatForecastReport(report *models.ForecastReport) string {
	var sb strings.Builder
	req := report.Request
	out := report.Outcome

	sb.WriteString("# House Purchase Forecast\n\n")
	sb.WriteString(fmt.Sprintf("**Run:** %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST")))
	if out != nil {
		sb.WriteString(fmt.Sprintf("**Outcome:** %s (`%s`)\n", tierLabel(out.Tier), out.Tier))
	}
	sb.WriteString("\n")

	sb.WriteString("## Purchase\n\n")
	sb.WriteString("| Target Price | Down Payment | Years | Savings | Monthly Contribution |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	down := decimal.Zero
	if out != nil {
		down = out.DownPaymentAmount
	}
	sb.WriteString(fmt.Sprintf("| %s | %s (%s%%) | %d | %s | %s |\n\n",
		formatMoney(req.TargetPrice),
		formatMoney(down), req.DownPaymentPct.String(),
		req.Years,
		formatMoney(req.CurrentSavings),
		formatMoney(req.MonthlyContribution),
	))

	if out != nil {
		sb.WriteString("## Projection\n\n")
		sb.WriteString("| | Amount |\n")
		sb.WriteString("|---|---|\n")
		sb.WriteString(fmt.Sprintf("| Accumulated savings | %s |\n", formatMoney(out.AccumulatedSavings)))
		sb.WriteString(fmt.Sprintf("| Current holdings | %s |\n", formatMoney(out.CurrentHoldingsValue)))
		growthLabel := "Growth multiplier"
		if report.Statistic != "" {
			growthLabel = fmt.Sprintf("Growth multiplier (%s)", report.Statistic)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", growthLabel, formatMultiple(out.GrowthMultiplier)))
		sb.WriteString(fmt.Sprintf("| Projected investments | %s |\n", formatMoney(out.ProjectedInvestmentValue)))
		sb.WriteString(fmt.Sprintf("| **Projected net worth** | **%s** |\n", formatMoney(out.TotalProjectedNetWorth)))
		if out.EstimatedMonthlyPayment != nil {
			sb.WriteString(fmt.Sprintf("| Est. monthly payment (%d months, no interest) | %s |\n",
				models.MortgageTermMonths, formatMoney(*out.EstimatedMonthlyPayment)))
		}
		sb.WriteString("\n")
	}

	if report.SavingsAlone {
		sb.WriteString("*Current savings already cover the target price; no simulation was run.*\n")
		return sb.String()
	}

	if len(report.Holdings) > 0 {
		sb.WriteString(fmt.Sprintf("## Holdings (priced %s)\n\n", report.PriceDate.Format("2006-01-02")))
		sb.WriteString("| Ticker | Units | Price | Value | Source | Date |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, h := range report.Holdings {
			date := "-"
			if !h.PriceDate.IsZero() {
				date = h.PriceDate.Format("2006-01-02")
			}
			sb.WriteString(fmt.Sprintf("| %s | %g | %s | %s | %s | %s |\n",
				h.Ticker, h.Quantity, formatMoney(h.Price), formatMoney(h.Value), h.Source, date))
		}
		sb.WriteString("\n")
	}

	if len(report.Weights) > 0 {
		sb.WriteString("## Allocation\n\n")
		sb.WriteString("| Ticker | Weight |\n")
		sb.WriteString("|---|---|\n")
		for _, w := range report.Weights {
			sb.WriteString(fmt.Sprintf("| %s | %.1f%% |\n", w.Ticker, w.Weight*100))
		}
		sb.WriteString("\n")
	}

	if len(report.Signals) > 0 {
		sb.WriteString("## Price History\n\n")
		sb.WriteString("| Ticker | Window | Last Close | CAGR | Volatility | Max Drawdown | 52w Range | Trend |\n")
		sb.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, sig := range report.Signals {
			window := "-"
			if sig.Bars > 0 {
				window = fmt.Sprintf("%s to %s", sig.From.Format("2006-01-02"), sig.To.Format("2006-01-02"))
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.1f%% | %.1f%% | %.1f%% | %s to %s | %s |\n",
				sig.Ticker, window, formatMoneyFloat(sig.LastClose),
				sig.AnnualReturn*100, sig.AnnualVolatility*100, sig.MaxDrawdown*100,
				formatMoneyFloat(sig.Low52Week), formatMoneyFloat(sig.High52Week), sig.Trend))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Simulation\n\n")
	sb.WriteString(fmt.Sprintf("- Paths: %d\n", report.Simulations))
	sb.WriteString(fmt.Sprintf("- Trading days simulated: %d\n", report.TradingDays))
	sb.WriteString(fmt.Sprintf("- Historical return days: %d\n", report.HistoryDays))
	sb.WriteString(fmt.Sprintf("- Seed: %d\n\n", report.Seed))

	if len(report.Statistics) > 0 {
		sb.WriteString("### Final Cumulative Return\n\n")
		sb.WriteString("| Statistic | Value |\n")
		sb.WriteString("|---|---|\n")
		for _, name := range models.StatisticNames() {
			v, ok := report.Statistics[name]
			if !ok {
				continue
			}
			marker := ""
			if name == report.Statistic {
				marker = " *"
			}
			sb.WriteString(fmt.Sprintf("| %s%s | %.4f |\n", name, marker, v))
		}
		sb.WriteString("\n")
	}

	if len(report.Bands) > 0 {
		sb.WriteString("### Percentile Bands (growth of $1)\n\n")
		sb.WriteString("| Day | P5 | P25 | P50 | P75 | P95 |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, b := range report.Bands {
			sb.WriteString(fmt.Sprintf("| %d | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
				b.Day, b.P5, b.P25, b.P50, b.P75, b.P95))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatListingSearch formats listing search results as markdown
func formatListingSearch(search *models.ListingSearch) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Listings: %s\n\n", search.City))
	sb.WriteString(fmt.Sprintf("**Price range:** %s to %s\n", formatMoneyFloat(search.MinPrice), formatMoneyFloat(search.MaxPrice)))
	sb.WriteString(fmt.Sprintf("**Projection:** %d years at %.2f%% per year\n", search.Years, search.AppreciationRate*100))
	sb.WriteString(fmt.Sprintf("**Matches:** %d of %d listings\n\n", len(search.Listings), search.Total))

	if len(search.Listings) == 0 {
		sb.WriteString("No listings found in this price range.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("| Address | Price | In %d Years | Location |\n", search.Years))
	sb.WriteString("|---|---|---|---|\n")
	for _, l := range search.Listings {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.5f, %.5f |\n",
			l.Address, formatMoneyFloat(l.Price), formatMoneyFloat(l.FuturePrice), l.Latitude, l.Longitude))
	}

	return sb.String()
}
