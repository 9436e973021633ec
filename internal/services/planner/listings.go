package planner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/hearth/internal/models"
)

// SearchListings finds houses in a city priced within the configured band
// around targetPrice and projects each price years ahead at the configured
// appreciation rate.
func (s *Service) SearchListings(ctx context.Context, city string, targetPrice float64, years int) (*models.ListingSearch, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidRequest)
	}
	if targetPrice <= 0 || math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	if years < 0 {
		return nil, fmt.Errorf("%w: years must not be negative", ErrInvalidRequest)
	}
	if s.listings == nil {
		return nil, fmt.Errorf("%w: listing search not configured", ErrDataUnavailable)
	}

	all, err := s.listings.SearchListings(ctx, city)
	if err != nil {
		s.logger.Warn().Str("city", city).Err(err).Msg("Listing search failed")
		return nil, fmt.Errorf("%w: listing search: %v", ErrDataUnavailable, err)
	}

	band := s.config.Listings.PriceBand
	rate := s.config.Listings.AppreciationRate
	result := &models.ListingSearch{
		City:             city,
		TargetPrice:      targetPrice,
		MinPrice:         targetPrice * (1 - band),
		MaxPrice:         targetPrice * (1 + band),
		Years:            years,
		AppreciationRate: rate,
		Total:            len(all),
		Listings:         []models.Listing{},
	}

	growth := math.Pow(1+rate, float64(years))
	for _, l := range all {
		if l.Price < result.MinPrice || l.Price > result.MaxPrice {
			continue
		}
		l.FuturePrice = math.Round(l.Price*growth*100) / 100
		result.Listings = append(result.Listings, l)
	}

	s.logger.Info().
		Str("city", city).
		Int("total", result.Total).
		Int("matched", len(result.Listings)).
		Msg("Listing search complete")

	return result, nil
}
