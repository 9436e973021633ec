package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Hearth MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleForecastPurchase implements the forecast_purchase tool
func handleForecastPurchase(plannerService interfaces.PlannerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := parseForecastRequest(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		report, err := plannerService.Forecast(ctx, req)
		if err != nil {
			logger.Error().Err(err).Msg("Forecast failed")
			return errorResult(fmt.Sprintf("Forecast error: %v", err)), nil
		}

		result := textResult(formatForecastReport(report))

		if request.GetBool("include_chart", false) && len(report.Bands) > 1 {
			png, err := plannerService.RenderChart(ctx, report)
			if err != nil {
				// The report stands on its own; a failed chart only drops the image
				logger.Warn().Err(err).Str("run_id", report.RunID).Msg("Chart render failed")
			} else {
				result.Content = append(result.Content,
					mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"))
			}
		}

		return result, nil
	}
}

// handleSearchListings implements the search_listings tool
func handleSearchListings(plannerService interfaces.PlannerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		city, err := request.RequireString("city")
		if err != nil || city == "" {
			return errorResult("Error: city parameter is required"), nil
		}
		targetPrice, err := request.RequireFloat("target_price")
		if err != nil {
			return errorResult("Error: target_price parameter is required"), nil
		}
		years := request.GetInt("years", 5)

		search, err := plannerService.SearchListings(ctx, city, targetPrice, years)
		if err != nil {
			logger.Error().Err(err).Str("city", city).Msg("Listing search failed")
			return errorResult(fmt.Sprintf("Listing search error: %v", err)), nil
		}

		return textResult(formatListingSearch(search)), nil
	}
}

// parseForecastRequest maps tool arguments onto a ForecastRequest.
func parseForecastRequest(request mcp.CallToolRequest) (models.ForecastRequest, error) {
	var req models.ForecastRequest

	targetPrice, err := request.RequireFloat("target_price")
	if err != nil {
		return req, fmt.Errorf("target_price parameter is required")
	}
	downPct, err := request.RequireFloat("down_payment_pct")
	if err != nil {
		return req, fmt.Errorf("down_payment_pct parameter is required")
	}
	years, err := request.RequireInt("years")
	if err != nil {
		return req, fmt.Errorf("years parameter is required")
	}

	req.TargetPrice = decimal.NewFromFloat(targetPrice)
	req.DownPaymentPct = decimal.NewFromFloat(downPct)
	req.Years = years
	req.CurrentSavings = decimal.NewFromFloat(request.GetFloat("current_savings", 0))
	req.MonthlyContribution = decimal.NewFromFloat(request.GetFloat("monthly_contribution", 0))
	req.RiskTier = request.GetString("risk_tier", "")
	req.Weights = request.GetFloatSlice("weights", nil)
	req.Statistic = request.GetString("statistic", "")
	req.NumSimulations = request.GetInt("num_simulations", 0)

	args := request.GetArguments()

	if raw, ok := args["holdings"]; ok && raw != nil {
		holdings, err := parseHoldings(raw)
		if err != nil {
			return req, err
		}
		req.Holdings = holdings
	}

	if raw, ok := args["seed"]; ok && raw != nil {
		seed, ok := toFloat(raw)
		if !ok || seed < 0 || seed != math.Trunc(seed) {
			return req, fmt.Errorf("seed must be a non-negative integer")
		}
		s := uint64(seed)
		req.Seed = &s
	}

	return req, nil
}

// parseHoldings accepts a JSON object of ticker to units, either native or
// string-encoded (some MCP proxies stringify object arguments).
func parseHoldings(raw any) (map[string]float64, error) {
	if s, ok := raw.(string); ok {
		var out map[string]float64
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("holdings must be an object of ticker to units: %v", err)
		}
		return out, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("holdings must be an object of ticker to units")
	}
	out := make(map[string]float64, len(obj))
	for ticker, v := range obj {
		qty, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("holding %s must be a number", ticker)
		}
		out[ticker] = qty
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
