package forecast

import (
	"fmt"
	"math"

	"github.com/bobmcallan/hearth/internal/models"
)

// BuildReturns converts an aligned panel into simple daily returns,
// (p[t] - p[t-1]) / p[t-1], one column per ticker.
func BuildReturns(panel *models.AlignedPricePanel) (*models.ReturnMatrix, error) {
	if panel == nil || panel.Rows() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 aligned dates", ErrInsufficientHistory)
	}

	m := &models.ReturnMatrix{
		Tickers: append([]string(nil), panel.Tickers...),
		Returns: make(map[string][]float64, len(panel.Tickers)),
	}

	for _, ticker := range panel.Tickers {
		closes := panel.Closes[ticker]
		if len(closes) != panel.Rows() {
			return nil, fmt.Errorf("%w: %s has %d closes for %d dates",
				ErrMalformedSeries, ticker, len(closes), panel.Rows())
		}
		for t, c := range closes {
			if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("%w: %s close %v on %s",
					ErrInvalidPrice, ticker, c, panel.Dates[t].Format("2006-01-02"))
			}
		}

		col := make([]float64, len(closes)-1)
		for t := 1; t < len(closes); t++ {
			col[t-1] = (closes[t] - closes[t-1]) / closes[t-1]
		}
		m.Returns[ticker] = col
	}

	return m, nil
}
