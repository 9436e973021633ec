package planner

import (
	"context"
	"fmt"
)

// WarmHistory loads price history for every configured asset over the last
// years of closes so later forecasts with the same or a shorter horizon are
// served from the cache. It returns the number of assets warmed and the first
// error encountered; remaining assets are still attempted.
func (s *Service) WarmHistory(ctx context.Context, years int) (int, error) {
	if years <= 0 {
		return 0, fmt.Errorf("%w: years must be positive", ErrInvalidRequest)
	}

	lastClose := s.calendar.LastClose(s.now())
	from := lastClose.AddDate(-years, 0, 0)

	var firstErr error
	warmed := 0
	for _, asset := range s.config.Portfolio.Assets {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if _, err := s.loadHistory(ctx, asset.Ticker, from, lastClose); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		warmed++
	}
	return warmed, firstErr
}
