package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/hearth/internal/models"
)

func threeAssetReturns() *models.ReturnMatrix {
	return &models.ReturnMatrix{
		Tickers: []string{"BTC-USD.CC", "SPY.US", "AGG.US"},
		Returns: map[string][]float64{
			"BTC-USD.CC": {0.05, -0.04, 0.02, 0.01, -0.03},
			"SPY.US":     {0.01, -0.005, 0.002, 0.004},
			"AGG.US":     {0.001, 0.0005, -0.0002},
		},
	}
}

func seedOf(v uint64) *uint64 { return &v }

func TestSimulate_WeightValidation(t *testing.T) {
	ctx := context.Background()
	opts := SimulateOptions{NumSimulations: 2, NumTradingDays: 3, Seed: seedOf(1)}

	_, err := Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{0.5, 0.5, 0.5}, opts)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{0.5, 0.5}, opts)
	assert.ErrorIs(t, err, ErrWeightCardinalityMismatch)

	_, err = Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{1.5, -0.5, 0}, opts)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{math.NaN(), 0.5, 0.5}, opts)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	// within tolerance
	_, err = Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{0.3333333, 0.3333333, 0.3333334}, opts)
	assert.NoError(t, err)
}

func TestSimulate_InvalidParams(t *testing.T) {
	ctx := context.Background()
	w := models.PortfolioWeights{0.2, 0.4, 0.4}

	_, err := Simulate(ctx, threeAssetReturns(), w, SimulateOptions{NumSimulations: 0, NumTradingDays: 5})
	assert.ErrorIs(t, err, ErrInvalidSimulationParams)

	_, err = Simulate(ctx, threeAssetReturns(), w, SimulateOptions{NumSimulations: 1, NumTradingDays: -1})
	assert.ErrorIs(t, err, ErrInvalidSimulationParams)

	empty := &models.ReturnMatrix{Tickers: []string{"SPY.US"}, Returns: map[string][]float64{"SPY.US": {}}}
	_, err = Simulate(ctx, empty, models.PortfolioWeights{1}, SimulateOptions{NumSimulations: 1, NumTradingDays: 1})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestSimulate_DeterministicWithSeed(t *testing.T) {
	ctx := context.Background()
	w := models.PortfolioWeights{0.3, 0.4, 0.3}

	a, err := Simulate(ctx, threeAssetReturns(), w, SimulateOptions{NumSimulations: 64, NumTradingDays: 252, Seed: seedOf(42), Workers: 1})
	require.NoError(t, err)
	b, err := Simulate(ctx, threeAssetReturns(), w, SimulateOptions{NumSimulations: 64, NumTradingDays: 252, Seed: seedOf(42), Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, a.Cumulative, b.Cumulative)

	c, err := Simulate(ctx, threeAssetReturns(), w, SimulateOptions{NumSimulations: 64, NumTradingDays: 252, Seed: seedOf(43)})
	require.NoError(t, err)
	assert.NotEqual(t, a.Cumulative, c.Cumulative)
}

func TestSimulate_ZeroDaysIsIdentity(t *testing.T) {
	res, err := Simulate(context.Background(), threeAssetReturns(), models.PortfolioWeights{0.2, 0.4, 0.4},
		SimulateOptions{NumSimulations: 10, NumTradingDays: 0})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Simulations)
	assert.Equal(t, 0, res.TradingDays)
	for _, row := range res.Cumulative {
		assert.Equal(t, []float64{1.0}, row)
	}
}

func TestSimulate_ConstantReturnsCompound(t *testing.T) {
	m := &models.ReturnMatrix{
		Tickers: []string{"SPY.US", "AGG.US"},
		Returns: map[string][]float64{
			"SPY.US": {0.02, 0.02, 0.02},
			"AGG.US": {0.00, 0.00},
		},
	}
	res, err := Simulate(context.Background(), m, models.PortfolioWeights{0.5, 0.5},
		SimulateOptions{NumSimulations: 3, NumTradingDays: 10, Seed: seedOf(9)})
	require.NoError(t, err)

	for _, row := range res.Cumulative {
		require.Len(t, row, 11)
		assert.Equal(t, 1.0, row[0])
		for day, v := range row {
			assert.InDelta(t, math.Pow(1.01, float64(day)), v, 1e-12)
		}
	}
}

func TestSimulate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Simulate(ctx, threeAssetReturns(), models.PortfolioWeights{0.2, 0.4, 0.4},
		SimulateOptions{NumSimulations: 1000, NumTradingDays: 1000})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestSimulate_DrawsEachAssetIndependently(t *testing.T) {
	a := []float64{0.01, 0.02}
	b := []float64{0.10, 0.20, 0.30}
	m := &models.ReturnMatrix{
		Tickers: []string{"SPY.US", "BTC-USD.CC"},
		Returns: map[string][]float64{"SPY.US": a, "BTC-USD.CC": b},
	}

	const sims, days = 400, 50
	res, err := Simulate(context.Background(), m, models.PortfolioWeights{0.5, 0.5},
		SimulateOptions{NumSimulations: sims, NumTradingDays: days, Seed: seedOf(11)})
	require.NoError(t, err)

	// Every (i, j) pair gives a distinct blended return, so each step identifies its draws.
	counts := make([][]int, len(a))
	for i := range counts {
		counts[i] = make([]int, len(b))
	}
	for _, row := range res.Cumulative {
		for step := 1; step < len(row); step++ {
			got := row[step]/row[step-1] - 1
			matched := false
			for i := range a {
				for j := range b {
					if math.Abs(got-(0.5*a[i]+0.5*b[j])) < 1e-9 {
						counts[i][j]++
						matched = true
					}
				}
			}
			require.True(t, matched, "step return %v is not a blend of one draw per asset", got)
		}
	}

	total := float64(sims * days)
	want := total / float64(len(a)*len(b))
	sameIndex := 0
	for i := range counts {
		for j, n := range counts[i] {
			assert.InDelta(t, want, float64(n), want*0.1, "pair (%d, %d)", i, j)
			if i == j {
				sameIndex += n
			}
		}
	}
	assert.InDelta(t, 2.0/6.0, float64(sameIndex)/total, 0.02, "draws must not share a row index across assets")
}
