package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/hearth/internal/models"
)

// handleForecast handles POST /api/forecast.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ForecastRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	report, err := s.app.PlannerService.Forecast(r.Context(), req)
	if err != nil {
		s.logServiceError(r, err, "Forecast failed")
		WriteServiceError(w, err)
		return
	}

	setRunHeaders(w, report)
	WriteJSON(w, http.StatusOK, report)
}

// setRunHeaders exposes the run ID and tier without parsing the body.
func setRunHeaders(w http.ResponseWriter, report *models.ForecastReport) {
	w.Header().Set("X-Run-ID", report.RunID)
	if report.Outcome != nil {
		w.Header().Set("X-Affordability-Tier", string(report.Outcome.Tier))
	}
}

// handleForecastChart handles POST /api/forecast/chart. It runs the forecast
// described by the body and responds with the percentile fan chart as PNG.
func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ForecastRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	report, err := s.app.PlannerService.Forecast(ctx, req)
	if err != nil {
		s.logServiceError(r, err, "Forecast failed")
		WriteServiceError(w, err)
		return
	}

	png, err := s.app.PlannerService.RenderChart(ctx, report)
	if err != nil {
		s.logServiceError(r, err, "Chart render failed")
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	setRunHeaders(w, report)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleListings handles GET /api/listings?city=&price=&years=.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "city query parameter is required", CodeInvalidRequest)
		return
	}
	price, err := strconv.ParseFloat(q.Get("price"), 64)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "price query parameter must be a number", CodeInvalidRequest)
		return
	}
	years := 5
	if v := q.Get("years"); v != "" {
		years, err = strconv.Atoi(v)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, "years query parameter must be an integer", CodeInvalidRequest)
			return
		}
	}

	search, err := s.app.PlannerService.SearchListings(r.Context(), city, price, years)
	if err != nil {
		s.logServiceError(r, err, "Listing search failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, search)
}

// handleMarketWarm handles POST /api/market/warm?years=, pre-loading price
// history for the configured assets.
func (s *Server) handleMarketWarm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	years := s.app.Config.Simulation.WarmYears
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteErrorWithCode(w, http.StatusBadRequest, "years must be a positive integer", CodeInvalidRequest)
			return
		}
		years = n
	}
	if years <= 0 {
		WriteErrorWithCode(w, http.StatusBadRequest, "years is required when warm_years is 0", CodeInvalidRequest)
		return
	}

	warmed, err := s.app.PlannerService.WarmHistory(r.Context(), years)
	if err != nil && warmed == 0 {
		s.logServiceError(r, err, "History warm failed")
		WriteServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"warmed": warmed,
		"assets": len(s.app.Config.Portfolio.Assets),
		"years":  years,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleMarketPurge handles POST /api/market/purge (dev mode only).
func (s *Server) handleMarketPurge(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Purge endpoint disabled in production")
		return
	}
	if s.app.Store == nil {
		WriteError(w, http.StatusServiceUnavailable, "Market store not available")
		return
	}

	history := s.app.Store.PurgeMarket()
	charts := s.app.Store.PurgeCharts()
	s.logger.Info().Int("history", history).Int("charts", charts).Msg("Market cache purged via HTTP endpoint")

	WriteJSON(w, http.StatusOK, map[string]int{
		"history": history,
		"charts":  charts,
	})
}

// logServiceError logs at error level for server faults and at warn for
// everything the caller or upstream caused.
func (s *Server) logServiceError(r *http.Request, err error, msg string) {
	status, _ := classifyError(err)
	event := s.logger.Warn()
	if status == http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(msg)
}
