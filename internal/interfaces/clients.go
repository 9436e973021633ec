// Package interfaces defines service contracts for Hearth
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/hearth/internal/models"
)

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// WithOrder sets the sort order ("a" or "d") for EOD query
func WithOrder(order string) EODOption {
	return func(p *EODParams) {
		p.Order = order
	}
}

// CryptoClient provides current crypto spot prices
type CryptoClient interface {
	// GetSpotPrice returns the USD spot price for a named coin (e.g. "Bitcoin")
	GetSpotPrice(ctx context.Context, name string) (float64, error)
}

// ListingClient searches property listings
type ListingClient interface {
	// SearchListings returns houses for sale in a location
	SearchListings(ctx context.Context, location string) ([]models.Listing, error)
}
