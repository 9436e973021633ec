package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/hearth/internal/models"
)

// Align restricts several price series to the dates on which every one of them
// has a close. Dates are compared by UTC calendar day and a NaN close counts
// as missing. The panel keeps the tickers in input order and never fills gaps.
func Align(series []models.AssetPriceSeries) (*models.AlignedPricePanel, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no series given", ErrMalformedSeries)
	}

	byDay := make([]map[time.Time]float64, len(series))
	seen := make(map[string]bool, len(series))
	for i, s := range series {
		if s.Ticker == "" {
			return nil, fmt.Errorf("%w: series %d has no ticker", ErrMalformedSeries, i)
		}
		if seen[s.Ticker] {
			return nil, fmt.Errorf("%w: ticker %s given twice", ErrMalformedSeries, s.Ticker)
		}
		seen[s.Ticker] = true
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: %s has no prices", ErrMalformedSeries, s.Ticker)
		}

		closes := make(map[time.Time]float64, len(s.Points))
		var prev time.Time
		for j, p := range s.Points {
			day := truncateDay(p.Date)
			if j > 0 && !day.After(prev) {
				return nil, fmt.Errorf("%w: %s dates not strictly ascending at %s",
					ErrMalformedSeries, s.Ticker, day.Format("2006-01-02"))
			}
			prev = day
			if math.IsNaN(p.Close) {
				continue
			}
			closes[day] = p.Close
		}
		byDay[i] = closes
	}

	panel := &models.AlignedPricePanel{
		Tickers: make([]string, len(series)),
		Closes:  make(map[string][]float64, len(series)),
	}
	for i, s := range series {
		panel.Tickers[i] = s.Ticker
	}

	// The first series is already ascending, so walking it yields a sorted intersection.
	for _, p := range series[0].Points {
		day := truncateDay(p.Date)
		if !presentInAll(byDay, day) {
			continue
		}
		panel.Dates = append(panel.Dates, day)
		for i, s := range series {
			panel.Closes[s.Ticker] = append(panel.Closes[s.Ticker], byDay[i][day])
		}
	}

	if len(panel.Dates) == 0 {
		return nil, ErrEmptyAlignment
	}
	return panel, nil
}

func presentInAll(byDay []map[time.Time]float64, day time.Time) bool {
	for _, m := range byDay {
		if _, ok := m[day]; !ok {
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
