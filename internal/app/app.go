package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hearth/internal/clients/crypto"
	"github.com/bobmcallan/hearth/internal/clients/eodhd"
	"github.com/bobmcallan/hearth/internal/clients/listings"
	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/services/planner"
	"github.com/bobmcallan/hearth/internal/storage/marketfs"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by both cmd/hearth-server and the REST layer.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Store          *marketfs.Store
	EODHDClient    interfaces.EODHDClient
	CryptoClient   interfaces.CryptoClient
	ListingClient  interfaces.ListingClient
	PlannerService interfaces.PlannerService
	MCPServer      *server.MCPServer
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, HEARTH_CONFIG,
// hearth.toml next to the binary, then config/hearth.toml for development.
func resolveConfigPath(configPath, binDir string) string {
	if configPath == "" {
		configPath = os.Getenv("HEARTH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "hearth.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/hearth.toml"
		}
	}
	return configPath
}

// NewApp initializes storage, clients, the planner service, and the MCP server.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	configPath = resolveConfigPath(configPath, binDir)

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Relative paths are anchored at the binary so the install is self-contained
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return newApp(config, logger, startupStart)
}

// newApp wires everything below config loading. Tests call it with a
// prepared config to skip path resolution.
func newApp(config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	store, err := marketfs.NewMarketStore(logger, config.Storage.Market.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize market store: %w", err)
	}

	// Purge cached data written under an older layout
	checkSchemaVersion(store, logger)

	ctx := context.Background()

	eodhdKey, err := common.ResolveAPIKey(ctx, "eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - forecasts will only use cached history")
	}

	rapidKey, err := common.ResolveAPIKey(ctx, "rapidapi_key", config.Clients.Listings.APIKey)
	if err != nil {
		logger.Warn().Msg("RapidAPI key not configured - listing search will be unavailable")
	}

	// Interfaces stay nil (not typed-nil) when a key is missing
	var eodhdClient interfaces.EODHDClient
	if eodhdKey != "" {
		eodhdClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	cryptoClient := crypto.NewClient(
		crypto.WithBaseURL(config.Clients.Crypto.BaseURL),
		crypto.WithLogger(logger),
		crypto.WithRateLimit(config.Clients.Crypto.RateLimit),
		crypto.WithTimeout(config.Clients.Crypto.GetTimeout()),
	)

	var listingClient interfaces.ListingClient
	if rapidKey != "" {
		listingClient = listings.NewClient(rapidKey,
			listings.WithBaseURL(config.Clients.Listings.BaseURL),
			listings.WithHost(config.Clients.Listings.Host),
			listings.WithLogger(logger),
			listings.WithRateLimit(config.Clients.Listings.RateLimit),
			listings.WithTimeout(config.Clients.Listings.GetTimeout()),
		)
	}

	plannerService := planner.NewService(
		config,
		store.MarketDataStorage(),
		store,
		eodhdClient,
		cryptoClient,
		listingClient,
		logger,
	)

	mcpServer := server.NewMCPServer(
		"hearth",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:         config,
		Logger:         logger,
		Store:          store,
		EODHDClient:    eodhdClient,
		CryptoClient:   cryptoClient,
		ListingClient:  listingClient,
		PlannerService: plannerService,
		MCPServer:      mcpServer,
		StartupTime:    startupStart,
	}

	a.registerTools()

	logger.Info().
		Dur("startup", time.Since(startupStart)).
		Int("assets", len(config.Portfolio.Assets)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App. Safe to call more than once.
// Shutdown order: cancel scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close market store")
		}
		a.Store = nil
	}
}

// StartWarmCache launches the background history warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.PlannerService, a.Config.Simulation.WarmYears, a.Logger)
	}()
}

// StartHistoryScheduler launches the background history refresh goroutine.
func (a *App) StartHistoryScheduler() {
	if a.Config.Simulation.WarmYears <= 0 {
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startHistoryScheduler(schedulerCtx, a.PlannerService, a.Config.Simulation.WarmYears, a.Logger, common.FreshnessHistory)
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createForecastPurchaseTool(), handleForecastPurchase(a.PlannerService, logger))
	s.AddTool(createSearchListingsTool(), handleSearchListings(a.PlannerService, logger))
}
