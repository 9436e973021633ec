package interfaces

import (
	"context"

	"github.com/bobmcallan/hearth/internal/models"
)

// PlannerService projects house purchase affordability
type PlannerService interface {
	// Forecast values holdings, simulates portfolio growth and classifies affordability
	Forecast(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error)

	// RenderChart draws the percentile fan of a report as PNG
	RenderChart(ctx context.Context, report *models.ForecastReport) ([]byte, error)

	// SearchListings finds houses around a target price with projected future prices
	SearchListings(ctx context.Context, city string, targetPrice float64, years int) (*models.ListingSearch, error)

	// WarmHistory pre-loads price history for the configured assets
	WarmHistory(ctx context.Context, years int) (int, error)
}
