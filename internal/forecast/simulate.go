package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/bobmcallan/hearth/internal/models"
)

// WeightTolerance is how far the weight sum may drift from 1.
const WeightTolerance = 1e-6

// SimulateOptions controls a Monte Carlo run.
type SimulateOptions struct {
	NumSimulations int     // paths, >= 1
	NumTradingDays int     // steps per path, >= 0
	Seed           *uint64 // nil draws a fresh seed
	Workers        int     // <= 0 uses GOMAXPROCS
}

// Simulate bootstraps cumulative-return paths for a fixed-weight portfolio.
//
// Every day of every path draws one historical return per asset, independently
// and with replacement, and compounds the weighted sum. Assets are resampled
// independently of each other, so historical co-movement is not preserved.
//
// Path i draws from its own PCG stream keyed by (seed, i), so a seeded run is
// reproducible regardless of worker count. A cancelled context aborts the run
// and returns ctx.Err().
func Simulate(ctx context.Context, returns *models.ReturnMatrix, weights models.PortfolioWeights, opts SimulateOptions) (*models.SimulationResult, error) {
	if opts.NumSimulations < 1 {
		return nil, fmt.Errorf("%w: num_simulations must be >= 1, got %d", ErrInvalidSimulationParams, opts.NumSimulations)
	}
	if opts.NumTradingDays < 0 {
		return nil, fmt.Errorf("%w: num_trading_days must be >= 0, got %d", ErrInvalidSimulationParams, opts.NumTradingDays)
	}
	if returns == nil || len(returns.Tickers) == 0 {
		return nil, fmt.Errorf("%w: no assets to simulate", ErrInsufficientHistory)
	}
	if len(weights) != len(returns.Tickers) {
		return nil, fmt.Errorf("%w: %d weights for %d assets", ErrWeightCardinalityMismatch, len(weights), len(returns.Tickers))
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	cols := make([][]float64, len(returns.Tickers))
	for i, ticker := range returns.Tickers {
		cols[i] = returns.Returns[ticker]
		if len(cols[i]) == 0 {
			return nil, fmt.Errorf("%w: %s has no returns", ErrInsufficientHistory, ticker)
		}
	}

	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.NumSimulations {
		workers = opts.NumSimulations
	}

	result := &models.SimulationResult{
		Simulations: opts.NumSimulations,
		TradingDays: opts.NumTradingDays,
		Cumulative:  make([][]float64, opts.NumSimulations),
	}

	paths := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range paths {
				if ctx.Err() != nil {
					continue
				}
				row := make([]float64, opts.NumTradingDays+1)
				rng := rand.New(rand.NewPCG(seed, uint64(i)))
				simulatePath(row, cols, weights, rng)
				result.Cumulative[i] = row
			}
		}()
	}

feed:
	for i := 0; i < opts.NumSimulations; i++ {
		select {
		case paths <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(paths)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func simulatePath(row []float64, cols [][]float64, weights []float64, rng *rand.Rand) {
	row[0] = 1.0
	for t := 1; t < len(row); t++ {
		r := 0.0
		for i, col := range cols {
			r += weights[i] * col[rng.IntN(len(col))]
		}
		row[t] = row[t-1] * (1 + r)
	}
}

// ValidateWeights checks that weights are non-negative finite numbers summing to 1.
func ValidateWeights(weights models.PortfolioWeights) error {
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, i, w)
		}
	}
	if sum := weights.Sum(); math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}
