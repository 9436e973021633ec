package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/hearth/internal/common"
)

func TestCorrelationIDMiddleware_Generates(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Len(t, rr.Header().Get("X-Correlation-ID"), 8)
}

func TestCorrelationIDMiddleware_PropagatesRequestID(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get("X-Correlation-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-9")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "corr-9", rr.Header().Get("X-Correlation-ID"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/forecast", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "X-Run-ID")
	assert.False(t, called, "preflight must not reach the handler")
}

func TestRecoveryMiddleware_ConvertsPanic(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/forecast", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var captured *responseWriter
	handler := loggingMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, captured.statusCode)
	assert.Equal(t, 15, captured.bytesWritten)

	// Flush passes through to the recorder
	captured.Flush()
	assert.True(t, rr.Flushed)
}

func TestWithDeadline(t *testing.T) {
	var hasDeadline bool
	var remaining time.Duration
	inner := func(w http.ResponseWriter, r *http.Request) {
		var dl time.Time
		dl, hasDeadline = r.Context().Deadline()
		remaining = time.Until(dl)
	}

	withDeadline(time.Minute, inner)(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/forecast", nil))
	assert.True(t, hasDeadline)
	assert.InDelta(t, time.Minute.Seconds(), remaining.Seconds(), 5)

	withDeadline(0, inner)(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/forecast", nil))
	assert.False(t, hasDeadline, "zero timeout leaves the context alone")
}
