// Package forecast is the Monte Carlo projection kernel: it aligns price
// histories, derives daily returns, simulates portfolio growth paths, reduces
// them to statistics and classifies house purchase affordability.
//
// Everything here is a pure function of its arguments. Data fetching, calendar
// adjustment and configuration live in the callers.
package forecast

import "errors"

var (
	ErrMalformedSeries           = errors.New("malformed price series")
	ErrEmptyAlignment            = errors.New("price series share no common dates")
	ErrInsufficientHistory       = errors.New("insufficient price history")
	ErrInvalidPrice              = errors.New("invalid close price")
	ErrWeightCardinalityMismatch = errors.New("weight count does not match asset count")
	ErrInvalidWeights            = errors.New("invalid portfolio weights")
	ErrInvalidSimulationParams   = errors.New("invalid simulation parameters")
	ErrEmptySimulationResult     = errors.New("empty simulation result")
	ErrUnknownStatistic          = errors.New("unknown summary statistic")
	ErrInvalidAffordabilityInput = errors.New("invalid affordability input")
)
