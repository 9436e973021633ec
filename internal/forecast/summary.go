package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/hearth/internal/models"
)

// Summarize reduces the final cumulative return of every path to descriptive
// statistics. Std is the sample standard deviation (0 for a single path).
// Percentiles interpolate linearly between closest ranks.
func Summarize(result *models.SimulationResult) (*models.SummaryStatistics, error) {
	if err := checkResult(result); err != nil {
		return nil, err
	}

	final := result.Final()
	sorted := append([]float64(nil), final...)
	sort.Float64s(sorted)

	s := &models.SummaryStatistics{
		Count:     len(final),
		Mean:      stat.Mean(final, nil),
		Min:       floats.Min(final),
		Max:       floats.Max(final),
		P25:       quantile(sorted, 0.25),
		P50:       quantile(sorted, 0.50),
		P75:       quantile(sorted, 0.75),
		CILower95: quantile(sorted, 0.025),
		CIUpper95: quantile(sorted, 0.975),
	}
	if len(final) > 1 {
		s.Std = stat.StdDev(final, nil)
	}
	return s, nil
}

// GrowthMultiplier selects one statistic by name, e.g. "mean" or "50th_percentile".
func GrowthMultiplier(stats *models.SummaryStatistics, name string) (float64, error) {
	if stats == nil {
		return 0, ErrEmptySimulationResult
	}
	v, ok := stats.Get(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStatistic, name, strings.Join(models.StatisticNames(), ", "))
	}
	return v, nil
}

// Bands computes the 5/25/50/75/95th percentiles across paths every step days.
// Day 0 and the final day are always included.
func Bands(result *models.SimulationResult, step int) ([]models.PercentileBand, error) {
	if err := checkResult(result); err != nil {
		return nil, err
	}
	if step < 1 {
		step = 1
	}

	last := len(result.Cumulative[0]) - 1
	column := make([]float64, len(result.Cumulative))
	var bands []models.PercentileBand
	for day := 0; ; day += step {
		if day > last {
			day = last
		}
		for i, row := range result.Cumulative {
			column[i] = row[day]
		}
		sort.Float64s(column)
		bands = append(bands, models.PercentileBand{
			Day: day,
			P5:  quantile(column, 0.05),
			P25: quantile(column, 0.25),
			P50: quantile(column, 0.50),
			P75: quantile(column, 0.75),
			P95: quantile(column, 0.95),
		})
		if day == last {
			break
		}
	}
	return bands, nil
}

func checkResult(result *models.SimulationResult) error {
	if result == nil || len(result.Cumulative) == 0 {
		return fmt.Errorf("%w: no simulations", ErrEmptySimulationResult)
	}
	width := len(result.Cumulative[0])
	for i, row := range result.Cumulative {
		if len(row) == 0 {
			return fmt.Errorf("%w: simulation %d has no values", ErrEmptySimulationResult, i)
		}
		if len(row) != width {
			return fmt.Errorf("%w: simulation %d has %d values, want %d", ErrEmptySimulationResult, i, len(row), width)
		}
	}
	return nil
}

// quantile returns the p-quantile of ascending values using linear
// interpolation between closest ranks: h = (n-1)p.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
