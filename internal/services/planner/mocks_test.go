package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/models"
)

// --- EODHD ---

type mockEODHD struct {
	mu      sync.Mutex
	calls   map[string]int
	err     error
	skip    map[string]bool // "TICKER 2006-01-02" bars to omit
	weekday map[string]bool // tickers that only trade Monday-Friday
}

func newMockEODHD() *mockEODHD {
	return &mockEODHD{
		calls:   map[string]int{},
		skip:    map[string]bool{},
		weekday: map[string]bool{"SPY.US": true, "AGG.US": true},
	}
}

func (m *mockEODHD) GetEOD(_ context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ticker]++
	if m.err != nil {
		return nil, m.err
	}

	p := &interfaces.EODParams{}
	for _, opt := range opts {
		opt(p)
	}

	base := map[string]float64{"BTC-USD.CC": 60000, "ETH-USD.CC": 3000, "SPY.US": 500, "AGG.US": 100}[ticker]
	resp := &models.EODResponse{}
	i := 0
	for d := p.From; !d.After(p.To); d = d.AddDate(0, 0, 1) {
		i++
		if m.weekday[ticker] && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		if m.skip[ticker+" "+d.Format("2006-01-02")] {
			continue
		}
		c := base * (1 + 0.0003*float64(i) + 0.01*math.Sin(float64(i)/3))
		resp.Data = append(resp.Data, models.EODBar{Date: d, Open: c, High: c, Low: c, Close: c, AdjClose: c})
	}
	return resp, nil
}

func (m *mockEODHD) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// --- crypto ---

type mockCrypto struct {
	prices map[string]float64
	err    error
}

func (m *mockCrypto) GetSpotPrice(_ context.Context, name string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	p, ok := m.prices[name]
	if !ok {
		return 0, fmt.Errorf("no price for %s", name)
	}
	return p, nil
}

// --- listings ---

type mockListings struct {
	listings []models.Listing
	err      error
	location string
}

func (m *mockListings) SearchListings(_ context.Context, location string) ([]models.Listing, error) {
	m.location = location
	return m.listings, m.err
}

// --- storage ---

type memMarket struct {
	mu   sync.Mutex
	data map[string]*models.MarketData
}

func newMemMarket() *memMarket {
	return &memMarket{data: map[string]*models.MarketData{}}
}

func (m *memMarket) GetMarketData(_ context.Context, ticker string) (*models.MarketData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if md, ok := m.data[ticker]; ok {
		cp := *md
		return &cp, nil
	}
	return nil, errors.New("not found")
}

func (m *memMarket) SaveMarketData(_ context.Context, md *models.MarketData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *md
	m.data[md.Ticker] = &cp
	return nil
}

type memBlobs struct {
	data   map[string][]byte
	writes int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (b *memBlobs) WriteRaw(subdir, key string, data []byte) error {
	b.writes++
	b.data[subdir+"/"+key] = data
	return nil
}

func (b *memBlobs) ReadRaw(subdir, key string) ([]byte, error) {
	d, ok := b.data[subdir+"/"+key]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

// --- harness ---

// 2026-10-19 is a Monday, so the last close is Friday 2026-10-16.
var testNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

type harness struct {
	svc      *Service
	eodhd    *mockEODHD
	crypto   *mockCrypto
	listings *mockListings
	market   *memMarket
	blobs    *memBlobs
}

func newHarness() *harness {
	cfg := common.NewDefaultConfig()
	cfg.Simulation.NumSimulations = 40
	h := &harness{
		eodhd:    newMockEODHD(),
		crypto:   &mockCrypto{prices: map[string]float64{"Bitcoin": 65000, "Ethereum": 3500}},
		listings: &mockListings{},
		market:   newMemMarket(),
		blobs:    newMemBlobs(),
	}
	h.svc = NewService(cfg, h.market, h.blobs, h.eodhd, h.crypto, h.listings, common.NewSilentLogger())
	h.svc.now = func() time.Time { return testNow }
	return h
}
