package server

import (
	"net/http"
	"runtime"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hearth/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Forecasting
	deadline := s.app.Config.Server.GetRequestTimeout()
	mux.HandleFunc("/api/forecast/chart", withDeadline(deadline, s.handleForecastChart))
	mux.HandleFunc("/api/forecast", withDeadline(deadline, s.handleForecast))
	mux.HandleFunc("/api/listings", s.handleListings)

	// Market cache
	mux.HandleFunc("/api/market/warm", s.handleMarketWarm)
	mux.HandleFunc("/api/market/purge", s.handleMarketPurge)

	// MCP over Streamable HTTP
	if s.app.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
			mcpserver.WithStateLess(true),
		))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config

	assets := make([]map[string]string, len(cfg.Portfolio.Assets))
	for i, a := range cfg.Portfolio.Assets {
		assets[i] = map[string]string{"ticker": a.Ticker, "kind": a.Kind}
	}

	presets := make(map[string][]float64, len(cfg.Presets))
	for name := range cfg.Presets {
		presets[name], _ = cfg.PresetWeights(name)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":           cfg.Environment,
		"request_timeout":       cfg.Server.GetRequestTimeout().String(),
		"market_data_path":      cfg.Storage.Market.Path,
		"logging_level":         cfg.Logging.Level,
		"num_simulations":       cfg.Simulation.NumSimulations,
		"trading_days_per_year": cfg.Simulation.TradingDaysPerYear,
		"growth_statistic":      cfg.Simulation.GrowthStatistic,
		"max_horizon_years":     cfg.Simulation.MaxHorizonYears,
		"warm_years":            cfg.Simulation.WarmYears,
		"fixed_seed":            cfg.Simulation.Seed != 0,
		"assets":                assets,
		"presets":               presets,
		"listing_price_band":    cfg.Listings.PriceBand,
		"appreciation_rate":     cfg.Listings.AppreciationRate,
		"eodhd_configured":      s.app.EODHDClient != nil,
		"listings_configured":   s.app.ListingClient != nil,
		"eodhd_api_key":         maskSecret(cfg.Clients.EODHD.APIKey),
		"rapidapi_key":          maskSecret(cfg.Clients.Listings.APIKey),
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":       common.GetVersion(),
		"build":         common.GetBuild(),
		"commit":        common.GetGitCommit(),
		"uptime":        uptime.String(),
		"started_at":    s.app.StartupTime,
		"goroutines":    runtime.NumGoroutine(),
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
	})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
