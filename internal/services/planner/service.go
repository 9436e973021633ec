// Package planner orchestrates a house purchase forecast: it prices current
// holdings, gathers price history, runs the Monte Carlo kernel and classifies
// affordability.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/forecast"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/models"
	"github.com/bobmcallan/hearth/internal/signals"
)

var (
	// ErrInvalidRequest marks a request the caller must fix.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCryptoInLowRisk rejects crypto holdings under a tier that allocates nothing to crypto.
	ErrCryptoInLowRisk = errors.New("crypto holdings are not allowed in a low-risk portfolio")
	// ErrDataUnavailable wraps upstream market data failures. Retrying later may succeed.
	ErrDataUnavailable = errors.New("data unavailable, try again")
)

// MaxSimulations bounds per-request path counts.
const MaxSimulations = 100_000

// Service implements PlannerService
type Service struct {
	config   *common.Config
	market   interfaces.MarketDataStorage
	blobs    interfaces.BlobStorage
	eodhd    interfaces.EODHDClient
	crypto   interfaces.CryptoClient
	listings interfaces.ListingClient
	calendar common.CloseDatePolicy
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new planner service. listings may be nil when no
// listing API key is configured.
func NewService(
	config *common.Config,
	market interfaces.MarketDataStorage,
	blobs interfaces.BlobStorage,
	eodhd interfaces.EODHDClient,
	crypto interfaces.CryptoClient,
	listings interfaces.ListingClient,
	logger *common.Logger,
) *Service {
	return &Service{
		config:   config,
		market:   market,
		blobs:    blobs,
		eodhd:    eodhd,
		crypto:   crypto,
		listings: listings,
		calendar: common.WeekendShiftPolicy{},
		logger:   logger,
		now:      time.Now,
	}
}

// plan is a validated request with every default resolved.
type plan struct {
	weights     models.PortfolioWeights
	statistic   string
	simulations int
	days        int
	seed        uint64
}

// Forecast runs a full purchase projection.
func (s *Service) Forecast(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error) {
	p, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	report := &models.ForecastReport{
		RunID:       uuid.New().String(),
		GeneratedAt: s.now().UTC(),
		Request:     req,
	}

	if req.CurrentSavings.GreaterThanOrEqual(req.TargetPrice) {
		outcome, err := forecast.Evaluate(affordabilityInputs(req, nil), 1.0)
		if err != nil {
			return nil, err
		}
		report.SavingsAlone = true
		report.Outcome = outcome
		s.logger.Info().Str("run_id", report.RunID).Msg("Savings alone cover the purchase, skipping simulation")
		return report, nil
	}

	lastClose := s.calendar.LastClose(s.now())
	from := lastClose.AddDate(-req.Years, 0, 0)
	report.PriceDate = lastClose

	series := make([]models.AssetPriceSeries, 0, len(s.config.Portfolio.Assets))
	histories := make(map[string][]models.EODBar, len(s.config.Portfolio.Assets))
	for _, asset := range s.config.Portfolio.Assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bars, err := s.loadHistory(ctx, asset.Ticker, from, lastClose)
		if err != nil {
			return nil, err
		}
		histories[asset.Ticker] = bars
		series = append(series, toSeries(asset.Ticker, bars))
		report.Signals = append(report.Signals, signals.Compute(asset.Ticker, bars, s.config.Simulation.TradingDaysPerYear))
	}

	holdings, err := s.valueHoldings(ctx, req.Holdings, histories, lastClose)
	if err != nil {
		return nil, err
	}
	report.Holdings = holdings
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	panel, err := forecast.Align(series)
	if err != nil {
		return nil, fmt.Errorf("aligning price history: %w", err)
	}
	returns, err := forecast.BuildReturns(panel)
	if err != nil {
		return nil, fmt.Errorf("building returns: %w", err)
	}

	start := time.Now()
	result, err := forecast.Simulate(ctx, returns, p.weights, forecast.SimulateOptions{
		NumSimulations: p.simulations,
		NumTradingDays: p.days,
		Seed:           &p.seed,
		Workers:        s.config.Simulation.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("simulating: %w", err)
	}
	s.logger.Info().
		Str("run_id", report.RunID).
		Int("simulations", p.simulations).
		Int("days", p.days).
		Int("history_days", returns.Rows()).
		Dur("elapsed", time.Since(start)).
		Msg("Monte Carlo simulation complete")

	stats, err := forecast.Summarize(result)
	if err != nil {
		return nil, err
	}
	growth, err := forecast.GrowthMultiplier(stats, p.statistic)
	if err != nil {
		return nil, err
	}
	bands, err := forecast.Bands(result, s.config.Simulation.TradingDaysPerYear)
	if err != nil {
		return nil, err
	}

	values := make([]models.HoldingValue, len(holdings))
	for i, h := range holdings {
		values[i] = models.HoldingValue{Ticker: h.Ticker, Value: h.Value}
	}
	outcome, err := forecast.Evaluate(affordabilityInputs(req, values), growth)
	if err != nil {
		return nil, err
	}

	report.Weights = make([]models.AssetWeight, len(p.weights))
	for i, w := range p.weights {
		report.Weights[i] = models.AssetWeight{Ticker: returns.Tickers[i], Weight: w}
	}
	report.HistoryDays = returns.Rows()
	report.Simulations = p.simulations
	report.TradingDays = p.days
	report.Seed = p.seed
	report.Statistic = p.statistic
	report.Statistics = stats.AsMap()
	report.Bands = bands
	report.Outcome = outcome

	s.logger.Info().
		Str("run_id", report.RunID).
		Str("tier", string(outcome.Tier)).
		Str("statistic", p.statistic).
		Float64("growth", growth).
		Msg("Forecast complete")

	return report, nil
}

// resolve validates the request and fills defaults from config.
func (s *Service) resolve(req models.ForecastRequest) (*plan, error) {
	cfg := s.config

	if req.Years <= 0 {
		return nil, fmt.Errorf("%w: years must be positive", ErrInvalidRequest)
	}
	if cfg.Simulation.MaxHorizonYears > 0 && req.Years > cfg.Simulation.MaxHorizonYears {
		return nil, fmt.Errorf("%w: years must be at most %d", ErrInvalidRequest, cfg.Simulation.MaxHorizonYears)
	}
	if !req.TargetPrice.IsPositive() {
		return nil, fmt.Errorf("%w: target_price must be positive", ErrInvalidRequest)
	}
	if req.DownPaymentPct.IsNegative() || req.DownPaymentPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: down_payment_pct must be between 0 and 100", ErrInvalidRequest)
	}
	if req.CurrentSavings.IsNegative() || req.MonthlyContribution.IsNegative() {
		return nil, fmt.Errorf("%w: savings and contributions must not be negative", ErrInvalidRequest)
	}

	known := make(map[string]common.AssetConfig, len(cfg.Portfolio.Assets))
	for _, a := range cfg.Portfolio.Assets {
		known[a.Ticker] = a
	}
	for ticker, qty := range req.Holdings {
		if _, ok := known[ticker]; !ok {
			return nil, fmt.Errorf("%w: unknown holding %s (tracked: %s)", ErrInvalidRequest, ticker, strings.Join(cfg.Portfolio.Tickers(), ", "))
		}
		if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
			return nil, fmt.Errorf("%w: quantity for %s must be a non-negative number", ErrInvalidRequest, ticker)
		}
	}

	p := &plan{
		statistic:   cfg.Simulation.GrowthStatistic,
		simulations: cfg.Simulation.NumSimulations,
		days:        req.Years * cfg.Simulation.TradingDaysPerYear,
	}

	switch {
	case len(req.Weights) > 0:
		if len(req.Weights) != len(cfg.Portfolio.Assets) {
			return nil, fmt.Errorf("%w: %d weights for %d assets", forecast.ErrWeightCardinalityMismatch, len(req.Weights), len(cfg.Portfolio.Assets))
		}
		p.weights = models.PortfolioWeights(req.Weights)
	case req.RiskTier != "":
		weights, ok := cfg.PresetWeights(req.RiskTier)
		if !ok {
			return nil, fmt.Errorf("%w: unknown risk tier %q", ErrInvalidRequest, req.RiskTier)
		}
		p.weights = weights
		for i, a := range cfg.Portfolio.Assets {
			if a.IsCrypto() && weights[i] == 0 && req.Holdings[a.Ticker] > 0 {
				return nil, fmt.Errorf("%w: %s held under risk tier %q", ErrCryptoInLowRisk, a.Ticker, req.RiskTier)
			}
		}
	default:
		return nil, fmt.Errorf("%w: risk_tier or weights is required", ErrInvalidRequest)
	}
	if err := forecast.ValidateWeights(p.weights); err != nil {
		return nil, err
	}

	if req.Statistic != "" {
		p.statistic = strings.ToLower(strings.TrimSpace(req.Statistic))
	}
	if _, ok := (&models.SummaryStatistics{}).Get(p.statistic); !ok {
		return nil, fmt.Errorf("%w: %q", forecast.ErrUnknownStatistic, p.statistic)
	}

	if req.NumSimulations < 0 || req.NumSimulations > MaxSimulations {
		return nil, fmt.Errorf("%w: num_simulations must be between 0 and %d", ErrInvalidRequest, MaxSimulations)
	}
	if req.NumSimulations > 0 {
		p.simulations = req.NumSimulations
	}

	switch {
	case req.Seed != nil:
		p.seed = *req.Seed
	case cfg.Simulation.Seed != 0:
		p.seed = cfg.Simulation.Seed
	default:
		p.seed = rand.Uint64()
	}

	return p, nil
}

func affordabilityInputs(req models.ForecastRequest, holdings []models.HoldingValue) models.AffordabilityInputs {
	return models.AffordabilityInputs{
		CurrentSavings:      req.CurrentSavings,
		MonthlyContribution: req.MonthlyContribution,
		Years:               req.Years,
		Holdings:            holdings,
		TargetPrice:         req.TargetPrice,
		DownPaymentPct:      req.DownPaymentPct,
	}
}

// Ensure Service implements PlannerService
var _ interfaces.PlannerService = (*Service)(nil)
