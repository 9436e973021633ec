package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/hearth/internal/forecast"
	"github.com/bobmcallan/hearth/internal/services/planner"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeUnprocessable    = "insufficient_data"
	CodeDataUnavailable  = "data_unavailable"
	CodeInternal         = "internal_error"
	CodeRequestCancelled = "request_cancelled"
)

// WriteServiceError maps a planner or kernel error onto an HTTP status.
// Caller mistakes are 400, unusable market history is 422, upstream
// failures and expired deadlines are 503, and everything else is 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	WriteErrorWithCode(w, status, message, code)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeRequestCancelled
	case errors.Is(err, planner.ErrInvalidRequest),
		errors.Is(err, planner.ErrCryptoInLowRisk),
		errors.Is(err, forecast.ErrInvalidWeights),
		errors.Is(err, forecast.ErrWeightCardinalityMismatch),
		errors.Is(err, forecast.ErrUnknownStatistic),
		errors.Is(err, forecast.ErrInvalidAffordabilityInput),
		errors.Is(err, forecast.ErrInvalidSimulationParams):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, forecast.ErrInsufficientHistory),
		errors.Is(err, forecast.ErrEmptyAlignment),
		errors.Is(err, forecast.ErrInvalidPrice),
		errors.Is(err, forecast.ErrMalformedSeries):
		return http.StatusUnprocessableEntity, CodeUnprocessable
	case errors.Is(err, planner.ErrDataUnavailable):
		return http.StatusServiceUnavailable, CodeDataUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}
