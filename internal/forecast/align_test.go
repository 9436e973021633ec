package forecast

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/hearth/internal/models"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func series(ticker string, days []int, closes []float64) models.AssetPriceSeries {
	s := models.AssetPriceSeries{Ticker: ticker}
	for i, d := range days {
		s.Points = append(s.Points, models.PricePoint{Date: day(d), Close: closes[i]})
	}
	return s
}

func TestAlign_IntersectsDates(t *testing.T) {
	panel, err := Align([]models.AssetPriceSeries{
		series("SPY.US", []int{0, 1, 2, 3, 4}, []float64{10, 11, 12, 13, 14}),
		series("BTC-USD.CC", []int{0, 1, 2, 3, 4, 5, 6}, []float64{100, 101, 102, 103, 104, 105, 106}),
		series("AGG.US", []int{1, 2, 4}, []float64{50, 51, 52}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY.US", "BTC-USD.CC", "AGG.US"}, panel.Tickers)
	assert.Equal(t, []time.Time{day(1), day(2), day(4)}, panel.Dates)
	assert.Equal(t, []float64{11, 12, 14}, panel.Closes["SPY.US"])
	assert.Equal(t, []float64{101, 102, 104}, panel.Closes["BTC-USD.CC"])
	assert.Equal(t, []float64{50, 51, 52}, panel.Closes["AGG.US"])
}

func TestAlign_SameCalendarDayDifferentClock(t *testing.T) {
	equity := models.AssetPriceSeries{Ticker: "SPY.US", Points: []models.PricePoint{
		{Date: day(0).Add(4 * time.Hour), Close: 1},
		{Date: day(1).Add(4 * time.Hour), Close: 2},
	}}
	crypto := models.AssetPriceSeries{Ticker: "ETH-USD.CC", Points: []models.PricePoint{
		{Date: day(0), Close: 3},
		{Date: day(1), Close: 4},
	}}

	panel, err := Align([]models.AssetPriceSeries{equity, crypto})
	require.NoError(t, err)
	assert.Equal(t, 2, panel.Rows())
	assert.Equal(t, []float64{3, 4}, panel.Closes["ETH-USD.CC"])
}

func TestAlign_MatchesBruteForceIntersection(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		nSeries := 1 + rng.IntN(4)
		var input []models.AssetPriceSeries
		sets := make([]map[int]float64, nSeries)
		for s := 0; s < nSeries; s++ {
			sets[s] = map[int]float64{}
			var days []int
			var closes []float64
			for d := 0; d < 40; d++ {
				if rng.Float64() < 0.7 {
					c := 1 + rng.Float64()*100
					days = append(days, d)
					closes = append(closes, c)
					sets[s][d] = c
				}
			}
			if len(days) == 0 {
				days, closes = []int{0}, []float64{1}
				sets[s][0] = 1
			}
			input = append(input, series(string(rune('A'+s)), days, closes))
		}

		var want []int
		for d := range sets[0] {
			inAll := true
			for _, set := range sets[1:] {
				if _, ok := set[d]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				want = append(want, d)
			}
		}
		sort.Ints(want)

		panel, err := Align(input)
		if len(want) == 0 {
			assert.ErrorIs(t, err, ErrEmptyAlignment)
			continue
		}
		require.NoError(t, err)
		require.Len(t, panel.Dates, len(want))
		for row, d := range want {
			assert.Equal(t, day(d), panel.Dates[row])
			for s, in := range input {
				assert.Equal(t, sets[s][d], panel.Closes[in.Ticker][row])
			}
		}
	}
}

func TestAlign_NaNCloseIsMissing(t *testing.T) {
	panel, err := Align([]models.AssetPriceSeries{
		series("SPY.US", []int{0, 1, 2, 3}, []float64{10, 11, math.NaN(), 13}),
		series("AGG.US", []int{0, 1, 2, 3}, []float64{50, 51, 52, 53}),
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(0), day(1), day(3)}, panel.Dates)
	assert.Equal(t, []float64{10, 11, 13}, panel.Closes["SPY.US"])
	assert.Equal(t, []float64{50, 51, 53}, panel.Closes["AGG.US"])

	returns, err := BuildReturns(panel)
	require.NoError(t, err)
	assert.Equal(t, 2, returns.Rows())

	_, err = Align([]models.AssetPriceSeries{
		series("SPY.US", []int{0, 1}, []float64{math.NaN(), math.NaN()}),
	})
	assert.ErrorIs(t, err, ErrEmptyAlignment)
}

func TestAlign_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []models.AssetPriceSeries
		want  error
	}{
		{"no series", nil, ErrMalformedSeries},
		{"empty series", []models.AssetPriceSeries{{Ticker: "SPY.US"}}, ErrMalformedSeries},
		{"empty ticker", []models.AssetPriceSeries{series("", []int{0}, []float64{1})}, ErrMalformedSeries},
		{"duplicate ticker", []models.AssetPriceSeries{
			series("SPY.US", []int{0}, []float64{1}),
			series("SPY.US", []int{0}, []float64{1}),
		}, ErrMalformedSeries},
		{"descending dates", []models.AssetPriceSeries{series("SPY.US", []int{2, 1}, []float64{1, 1})}, ErrMalformedSeries},
		{"duplicate date", []models.AssetPriceSeries{series("SPY.US", []int{1, 1}, []float64{1, 1})}, ErrMalformedSeries},
		{"disjoint", []models.AssetPriceSeries{
			series("SPY.US", []int{0, 1}, []float64{1, 1}),
			series("AGG.US", []int{2, 3}, []float64{1, 1}),
		}, ErrEmptyAlignment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Align(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
