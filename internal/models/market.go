package models

import "time"

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse represents the EODHD API response
type EODResponse struct {
	Data []EODBar `json:"data"`
}

// MarketData is the cached price history for a ticker
type MarketData struct {
	Ticker       string    `json:"ticker"`
	EOD          []EODBar  `json:"eod"` // ascending by date
	HistoryFrom  time.Time `json:"history_from"`
	HistoryTo    time.Time `json:"history_to"`
	EODUpdatedAt time.Time `json:"eod_updated_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Covers reports whether the cached history spans [from, to].
func (m *MarketData) Covers(from, to time.Time) bool {
	if m == nil || len(m.EOD) == 0 {
		return false
	}
	return !m.HistoryFrom.After(from) && !m.HistoryTo.Before(to)
}

// Listing is a property for sale returned by the listing search
type Listing struct {
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Price       float64 `json:"price"`
	FuturePrice float64 `json:"future_price,omitempty"`
}

// ListingSearch is the filtered result of a listing search
type ListingSearch struct {
	City             string    `json:"city"`
	TargetPrice      float64   `json:"target_price"`
	MinPrice         float64   `json:"min_price"`
	MaxPrice         float64   `json:"max_price"`
	Years            int       `json:"years"`
	AppreciationRate float64   `json:"appreciation_rate"`
	Total            int       `json:"total"` // listings returned before filtering
	Listings         []Listing `json:"listings"`
}
