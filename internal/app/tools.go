package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Hearth MCP server version and status. Use this to verify connectivity."),
	)
}

// createForecastPurchaseTool returns the forecast_purchase tool definition
func createForecastPurchaseTool() mcp.Tool {
	return mcp.NewTool("forecast_purchase",
		mcp.WithDescription("Project whether a household can buy a house in N years. Values current holdings, runs a Monte Carlo simulation of the portfolio over historical daily returns, and classifies the outcome as FULL_PURCHASE_AFFORDABLE, DOWN_PAYMENT_AFFORDABLE or INSUFFICIENT."),
		mcp.WithNumber("target_price",
			mcp.Required(),
			mcp.Description("House price in USD (e.g., 650000)"),
		),
		mcp.WithNumber("down_payment_pct",
			mcp.Required(),
			mcp.Description("Down payment as a percentage of the price, 0-100 (e.g., 20)"),
		),
		mcp.WithNumber("years",
			mcp.Required(),
			mcp.Description("Years until purchase (>= 1)"),
		),
		mcp.WithNumber("current_savings",
			mcp.Description("Cash savings today in USD (default: 0)"),
		),
		mcp.WithNumber("monthly_contribution",
			mcp.Description("Cash added to savings each month in USD (default: 0)"),
		),
		mcp.WithString("risk_tier",
			mcp.Description("Preset allocation: low, medium or high. Ignored when weights are given."),
		),
		mcp.WithArray("weights",
			mcp.WithNumberItems(),
			mcp.Description("Explicit allocation, one weight per configured asset in order, summing to 1"),
		),
		mcp.WithObject("holdings",
			mcp.Description("Units held per ticker (e.g., {\"SPY.US\": 12, \"BTC-USD.CC\": 0.5})"),
		),
		mcp.WithString("statistic",
			mcp.Description("Summary statistic used as the growth multiplier: mean, std, min, max, 25th_percentile, 50th_percentile, 75th_percentile, ci_lower_95, ci_upper_95 (default from config)"),
		),
		mcp.WithNumber("num_simulations",
			mcp.Description("Monte Carlo paths (default from config)"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Random seed for a reproducible run"),
		),
		mcp.WithBoolean("include_chart",
			mcp.Description("Attach a percentile fan chart as an image (default: false)"),
		),
	)
}

// createSearchListingsTool returns the search_listings tool definition
func createSearchListingsTool() mcp.Tool {
	return mcp.NewTool("search_listings",
		mcp.WithDescription("Find houses for sale in a city priced near a target, with each price projected forward by the configured annual appreciation rate."),
		mcp.WithString("city",
			mcp.Required(),
			mcp.Description("City or location to search (e.g., 'Austin, TX')"),
		),
		mcp.WithNumber("target_price",
			mcp.Required(),
			mcp.Description("Target house price in USD"),
		),
		mcp.WithNumber("years",
			mcp.Description("Years until purchase, used for the projected price (default: 5)"),
		),
	)
}
