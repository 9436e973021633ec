package app

import (
	"context"
	"time"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
)

// startHistoryScheduler refreshes cached price history on a fixed interval so
// the cache never serves bars older than the freshness window.
func startHistoryScheduler(ctx context.Context, plannerService interfaces.PlannerService, years int, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("History scheduler: stopped")
			return
		case <-ticker.C:
			refreshHistory(ctx, plannerService, years, logger)
		}
	}
}

func refreshHistory(ctx context.Context, plannerService interfaces.PlannerService, years int, logger *common.Logger) {
	start := time.Now()

	warmed, err := plannerService.WarmHistory(ctx, years)
	if err != nil {
		logger.Warn().Err(err).Int("warmed", warmed).Msg("History refresh: failed")
		return
	}

	logger.Info().
		Int("assets", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("History refresh: complete")
}
