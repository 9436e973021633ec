package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/models"
)

// closeLookback is how many earlier calendar days are tried when the last
// close date has no bar (exchange holidays).
const closeLookback = 3

// loadHistory returns ascending daily bars covering [from, to], served from the
// market cache when it is fresh and wide enough.
func (s *Service) loadHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.EODBar, error) {
	now := s.now()

	cached, _ := s.market.GetMarketData(ctx, ticker)
	if cached != nil && cached.Covers(from, to) && common.IsFreshAt(cached.EODUpdatedAt, common.FreshnessHistory, now) {
		s.logger.Debug().Str("ticker", ticker).Int("bars", len(cached.EOD)).Msg("Using cached price history")
		return window(cached.EOD, from, to), nil
	}

	if s.eodhd == nil {
		return nil, fmt.Errorf("%w: EODHD client not configured", ErrDataUnavailable)
	}

	resp, err := s.eodhd.GetEOD(ctx, ticker, interfaces.WithDateRange(from, to), interfaces.WithOrder("a"))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to fetch price history")
		return nil, fmt.Errorf("%w: price history for %s: %w", ErrDataUnavailable, ticker, err)
	}
	bars := append([]models.EODBar(nil), resp.Data...)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s", ErrDataUnavailable, ticker)
	}

	md := &models.MarketData{
		Ticker:       ticker,
		EOD:          bars,
		HistoryFrom:  from,
		HistoryTo:    to,
		EODUpdatedAt: now,
	}
	if err := s.market.SaveMarketData(ctx, md); err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Failed to cache price history")
	}

	return window(bars, from, to), nil
}

// window keeps the bars dated within [from, to] by calendar day.
func window(bars []models.EODBar, from, to time.Time) []models.EODBar {
	lo, hi := dayKey(from), dayKey(to)
	out := make([]models.EODBar, 0, len(bars))
	for _, b := range bars {
		k := dayKey(b.Date)
		if k >= lo && k <= hi {
			out = append(out, b)
		}
	}
	return out
}

// toSeries uses adjusted closes so distributions and splits do not show up as returns.
func toSeries(ticker string, bars []models.EODBar) models.AssetPriceSeries {
	s := models.AssetPriceSeries{Ticker: ticker, Points: make([]models.PricePoint, len(bars))}
	for i, b := range bars {
		c := b.AdjClose
		if c <= 0 {
			c = b.Close
		}
		s.Points[i] = models.PricePoint{Date: b.Date, Close: c}
	}
	return s
}

// closeOn finds the close on date, stepping back up to closeLookback days.
func closeOn(bars []models.EODBar, date time.Time) (models.EODBar, bool) {
	byDay := make(map[string]models.EODBar, len(bars))
	for _, b := range bars {
		byDay[dayKey(b.Date)] = b
	}
	for back := 0; back <= closeLookback; back++ {
		if b, ok := byDay[dayKey(date.AddDate(0, 0, -back))]; ok && b.Close > 0 {
			return b, true
		}
	}
	return models.EODBar{}, false
}

// valueHoldings prices each held asset: equities at the last close, crypto at spot.
func (s *Service) valueHoldings(ctx context.Context, quantities map[string]float64, histories map[string][]models.EODBar, lastClose time.Time) ([]models.HoldingValuation, error) {
	var out []models.HoldingValuation
	for _, asset := range s.config.Portfolio.Assets {
		qty := quantities[asset.Ticker]
		if qty <= 0 {
			continue
		}

		v := models.HoldingValuation{Ticker: asset.Ticker, Quantity: qty}
		if asset.IsCrypto() {
			if s.crypto == nil {
				return nil, fmt.Errorf("%w: crypto price client not configured", ErrDataUnavailable)
			}
			price, err := s.crypto.GetSpotPrice(ctx, asset.SpotSymbol)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				s.logger.Warn().Str("ticker", asset.Ticker).Err(err).Msg("Failed to fetch crypto spot price")
				return nil, fmt.Errorf("%w: spot price for %s: %w", ErrDataUnavailable, asset.SpotSymbol, err)
			}
			v.Price = decimal.NewFromFloat(price)
			v.Source = "spot"
			v.PriceDate = s.now().UTC()
		} else {
			bar, ok := closeOn(histories[asset.Ticker], lastClose)
			if !ok {
				return nil, fmt.Errorf("%w: no close for %s on or before %s", ErrDataUnavailable, asset.Ticker, lastClose.Format("2006-01-02"))
			}
			v.Price = decimal.NewFromFloat(bar.Close)
			v.Source = "eod"
			v.PriceDate = bar.Date
		}
		v.Value = v.Price.Mul(decimal.NewFromFloat(qty))
		out = append(out, v)
	}
	return out, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
