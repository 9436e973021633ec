// Package listings provides a client for the RapidAPI Zillow property search
package listings

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
	"github.com/bobmcallan/hearth/internal/models"
)

const (
	DefaultBaseURL   = "https://zillow-com1.p.rapidapi.com"
	DefaultHost      = "zillow-com1.p.rapidapi.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1 // requests per second
)

// Client implements the ListingClient interface
type Client struct {
	baseURL    string
	host       string
	apiKey     string
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

// WithHost sets the x-rapidapi-host header value
func WithHost(host string) ClientOption {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
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

// NewClient creates a new listing search client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		host:    DefaultHost,
		apiKey:  apiKey,
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
	return fmt.Sprintf("listing API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type searchResponse struct {
	Props []struct {
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Price     float64 `json:"price"`
	} `json:"props"`
	TotalResultCount int `json:"totalResultCount"`
}

// SearchListings returns houses for sale in a location, in API order.
func (c *Client) SearchListings(ctx context.Context, location string) ([]models.Listing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	const path = "/propertyExtendedSearch"
	params := url.Values{}
	params.Set("location", location)
	params.Set("home_type", "Houses")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("location", location).Dur("elapsed", elapsed).Msg("Listing search failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Str("location", location).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Listing search non-OK response")
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]models.Listing, 0, len(apiResp.Props))
	for _, p := range apiResp.Props {
		out = append(out, models.Listing{
			Address:   p.Address,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Price:     p.Price,
		})
	}

	c.logger.Info().Str("location", location).Int("count", len(out)).Dur("elapsed", elapsed).Msg("Listing search")
	return out, nil
}

// Ensure Client implements ListingClient
var _ interfaces.ListingClient = (*Client)(nil)
