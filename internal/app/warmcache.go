package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
)

// warmCache pre-loads price history on startup so the first forecast is fast.
func warmCache(ctx context.Context, plannerService interfaces.PlannerService, years int, logger *common.Logger) {
	if os.Getenv("HEARTH_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via HEARTH_WARM_CACHE=off")
		return
	}
	if years <= 0 {
		logger.Debug().Msg("Warm cache: warm_years is 0, skipping")
		return
	}

	start := time.Now()
	warmed, err := plannerService.WarmHistory(ctx, years)
	if err != nil {
		logger.Warn().Err(err).Int("warmed", warmed).Msg("Warm cache: some price history could not be loaded")
		return
	}

	logger.Info().
		Int("assets", warmed).
		Int("years", years).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
