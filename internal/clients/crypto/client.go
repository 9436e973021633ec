// Package crypto provides a client for the alternative.me crypto ticker API
package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://api.alternative.me/v2"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// Client implements the CryptoClient interface.
// No API key is required, the ticker endpoint is public.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new crypto ticker client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crypto API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// tickerResponse is keyed by the API's numeric coin id ("1" for Bitcoin,
// "1027" for Ethereum), so the entry is found by iterating the map.
type tickerResponse struct {
	Data map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Quotes map[string]struct {
			Price float64 `json:"price"`
		} `json:"quotes"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// GetSpotPrice returns the USD spot price of a coin by its API name, e.g. "Bitcoin".
func (c *Client) GetSpotPrice(ctx context.Context, name string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/ticker/%s/", url.PathEscape(name))
	reqURL := fmt.Sprintf("%s%s?convert=USD", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("coin", name).Msg("Crypto ticker request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("coin", name).Dur("elapsed", elapsed).Msg("Crypto ticker request failed")
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Str("coin", name).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Crypto ticker non-OK response")
		return 0, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var apiResp tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Metadata.Error != nil && *apiResp.Metadata.Error != "" {
		return 0, &APIError{StatusCode: resp.StatusCode, Message: *apiResp.Metadata.Error, Endpoint: path}
	}
	if len(apiResp.Data) != 1 {
		return 0, fmt.Errorf("expected one ticker entry for %s, got %d", name, len(apiResp.Data))
	}

	for _, entry := range apiResp.Data {
		usd, ok := entry.Quotes["USD"]
		if !ok || usd.Price <= 0 {
			return 0, fmt.Errorf("no USD price for %s", name)
		}
		c.logger.Info().Str("coin", name).Float64("price", usd.Price).Dur("elapsed", elapsed).Msg("Crypto ticker call")
		return usd.Price, nil
	}
	return 0, fmt.Errorf("no USD price for %s", name)
}

// Ensure Client implements CryptoClient
var _ interfaces.CryptoClient = (*Client)(nil)
