// Package common provides shared utilities for Hearth
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Hearth
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Clients     ClientsConfig     `toml:"clients"`
	Logging     LoggingConfig     `toml:"logging"`
	Simulation  SimulationConfig  `toml:"simulation"`
	Portfolio   PortfolioConfig   `toml:"portfolio"`
	Presets     map[string]Preset `toml:"presets"`
	Listings    ListingsConfig    `toml:"listings"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RequestTimeout string `toml:"request_timeout"` // deadline for a forecast request, "0" = none
}

// GetRequestTimeout returns the forecast request deadline; zero means none.
func (c *ServerConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Market AreaConfig `toml:"market"` // Cached price history + chart blobs (file-based JSON)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD    EODHDConfig    `toml:"eodhd"`
	Crypto   CryptoConfig   `toml:"crypto"`
	Listings ListingsClient `toml:"listings"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// CryptoConfig holds the crypto spot price API configuration
type CryptoConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *CryptoConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// ListingsClient holds the property listing API configuration
type ListingsClient struct {
	BaseURL   string `toml:"base_url"`
	Host      string `toml:"host"` // x-rapidapi-host header
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ListingsClient) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// SimulationConfig controls the Monte Carlo engine defaults
type SimulationConfig struct {
	NumSimulations     int    `toml:"num_simulations"`
	TradingDaysPerYear int    `toml:"trading_days_per_year"`
	Workers            int    `toml:"workers"`          // 0 = GOMAXPROCS
	GrowthStatistic    string `toml:"growth_statistic"` // summary statistic applied to current holdings
	Seed               uint64 `toml:"seed"`             // 0 = random per run
	MaxHorizonYears    int    `toml:"max_horizon_years"`
	WarmYears          int    `toml:"warm_years"` // history pre-loaded at startup, 0 = off
}

// AssetConfig describes one asset of the tracked portfolio
type AssetConfig struct {
	Ticker     string `toml:"ticker"`      // EODHD ticker, e.g. "SPY.US", "BTC-USD.CC"
	Kind       string `toml:"kind"`        // "equity" or "crypto"
	SpotSymbol string `toml:"spot_symbol"` // crypto spot API name, e.g. "Bitcoin"
}

// IsCrypto reports whether the asset is valued from a crypto spot price
func (a AssetConfig) IsCrypto() bool {
	return strings.EqualFold(a.Kind, "crypto")
}

// PortfolioConfig lists the assets in weight order
type PortfolioConfig struct {
	Assets []AssetConfig `toml:"assets"`
}

// Tickers returns the asset tickers in configured order
func (p PortfolioConfig) Tickers() []string {
	out := make([]string, len(p.Assets))
	for i, a := range p.Assets {
		out[i] = a.Ticker
	}
	return out
}

// Preset is a named risk tier weight vector keyed by ticker
type Preset struct {
	Weights map[string]float64 `toml:"weights"`
}

// ListingsConfig holds listing search parameters
type ListingsConfig struct {
	PriceBand        float64 `toml:"price_band"`        // fraction around target price, 0.2 = ±20%
	AppreciationRate float64 `toml:"appreciation_rate"` // annual house price growth for future price
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           4343,
			RequestTimeout: "120s",
		},
		Storage: StorageConfig{
			Market: AreaConfig{Path: "data/market"},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Crypto: CryptoConfig{
				BaseURL:   "https://api.alternative.me/v2",
				RateLimit: 2,
				Timeout:   "15s",
			},
			Listings: ListingsClient{
				BaseURL:   "https://zillow-com1.p.rapidapi.com",
				Host:      "zillow-com1.p.rapidapi.com",
				RateLimit: 1,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/hearth.log",
		},
		Simulation: SimulationConfig{
			NumSimulations:     500,
			TradingDaysPerYear: 252,
			GrowthStatistic:    "mean",
			MaxHorizonYears:    50,
			WarmYears:          10,
		},
		Portfolio: PortfolioConfig{
			Assets: []AssetConfig{
				{Ticker: "BTC-USD.CC", Kind: "crypto", SpotSymbol: "Bitcoin"},
				{Ticker: "ETH-USD.CC", Kind: "crypto", SpotSymbol: "Ethereum"},
				{Ticker: "SPY.US", Kind: "equity"},
				{Ticker: "AGG.US", Kind: "equity"},
			},
		},
		Presets: map[string]Preset{
			"low": {Weights: map[string]float64{
				"BTC-USD.CC": 0.00, "ETH-USD.CC": 0.00, "SPY.US": 0.50, "AGG.US": 0.50,
			}},
			"medium": {Weights: map[string]float64{
				"BTC-USD.CC": 0.10, "ETH-USD.CC": 0.10, "SPY.US": 0.40, "AGG.US": 0.40,
			}},
			"high": {Weights: map[string]float64{
				"BTC-USD.CC": 0.30, "ETH-USD.CC": 0.30, "SPY.US": 0.20, "AGG.US": 0.20,
			}},
		},
		Listings: ListingsConfig{
			PriceBand:        0.20,
			AppreciationRate: 0.038,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("HEARTH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("HEARTH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("HEARTH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("HEARTH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("HEARTH_DATA_PATH"); path != "" {
		config.Storage.Market.Path = filepath.Join(path, "market")
	}

	if n := os.Getenv("HEARTH_SIMULATIONS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			config.Simulation.NumSimulations = v
		}
	}

	if seed := os.Getenv("HEARTH_SEED"); seed != "" {
		if v, err := strconv.ParseUint(seed, 10, 64); err == nil {
			config.Simulation.Seed = v
		}
	}
}

// Validate checks invariants the services rely on.
func (c *Config) Validate() error {
	if c.Simulation.NumSimulations < 1 {
		return fmt.Errorf("simulation.num_simulations must be >= 1, got %d", c.Simulation.NumSimulations)
	}
	if c.Simulation.TradingDaysPerYear < 1 {
		return fmt.Errorf("simulation.trading_days_per_year must be >= 1, got %d", c.Simulation.TradingDaysPerYear)
	}
	if len(c.Portfolio.Assets) == 0 {
		return fmt.Errorf("portfolio.assets must list at least one asset")
	}
	seen := make(map[string]bool, len(c.Portfolio.Assets))
	for _, a := range c.Portfolio.Assets {
		if a.Ticker == "" {
			return fmt.Errorf("portfolio asset with empty ticker")
		}
		if seen[a.Ticker] {
			return fmt.Errorf("portfolio asset %s listed twice", a.Ticker)
		}
		seen[a.Ticker] = true
		if a.IsCrypto() && a.SpotSymbol == "" {
			return fmt.Errorf("crypto asset %s needs a spot_symbol", a.Ticker)
		}
	}
	for name, p := range c.Presets {
		for ticker := range p.Weights {
			if !seen[ticker] {
				return fmt.Errorf("preset %q weights unknown ticker %s", name, ticker)
			}
		}
	}
	return nil
}

// PresetWeights returns the preset's weight vector ordered like Portfolio.Assets.
func (c *Config) PresetWeights(name string) ([]float64, bool) {
	p, ok := c.Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	weights := make([]float64, len(c.Portfolio.Assets))
	for i, a := range c.Portfolio.Assets {
		weights[i] = p.Weights[a.Ticker]
	}
	return weights, true
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or the configured fallback
func ResolveAPIKey(_ context.Context, name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":   {"EODHD_API_KEY", "HEARTH_EODHD_API_KEY"},
		"rapidapi_key":    {"RAPIDAPI_KEY", "HEARTH_RAPIDAPI_KEY"},
		"listing_api_key": {"RAPIDAPI_KEY", "HEARTH_RAPIDAPI_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
