package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", GetBuild()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Int("simulations", config.Simulation.NumSimulations).
		Str("growth_statistic", config.Simulation.GrowthStatistic).
		Msg("Application started")
}

func printBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		` 888    888 8888888888        d8888 8888888b. 88888888888 888    888`,
		` 888    888 888              d88888 888   Y88b    888     888    888`,
		` 8888888888 8888888         d88P888 8888888P"     888     8888888888`,
		` 888    888 888            d88P 888 888 T88b      888     888    888`,
		` 888    888 8888888888    d88P  888 888  T88b     888     888    888`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  House Purchase Projection%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)},
		{"Market cache", config.Storage.Market.Path},
		{"Assets", strings.Join(config.Portfolio.Tickers(), ", ")},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-16s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(os.Stderr, "\n%s\n%s  HEARTH SHUTTING DOWN%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)

	logger.Info().Msg("Application shutting down")
}
