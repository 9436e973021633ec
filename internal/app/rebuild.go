package app

import (
	"errors"
	"strings"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/storage/marketfs"
)

const (
	metaSubdir       = "meta"
	schemaVersionKey = "schema_version"
)

// checkSchemaVersion compares the stored cache schema version against
// common.SchemaVersion. On mismatch (or missing version) it purges cached
// history and charts and stores the new version. Returns true if a purge ran.
func checkSchemaVersion(store *marketfs.Store, logger *common.Logger) bool {
	raw, err := store.ReadRaw(metaSubdir, schemaVersionKey)
	stored := strings.TrimSpace(string(raw))
	if err == nil && stored == common.SchemaVersion {
		logger.Debug().
			Str("version", common.SchemaVersion).
			Msg("Schema version matches - no purge needed")
		return false
	}

	if err != nil && !errors.Is(err, marketfs.ErrNotFound) {
		logger.Warn().Err(err).Msg("Failed to read schema version")
	}

	if stored == "" {
		logger.Info().
			Str("current", common.SchemaVersion).
			Msg("Schema version not found - initializing")
	} else {
		logger.Warn().
			Str("stored", stored).
			Str("current", common.SchemaVersion).
			Msg("Schema version mismatch - purging cached market data")
	}

	history := store.PurgeMarket()
	charts := store.PurgeCharts()
	logger.Info().
		Int("history", history).
		Int("charts", charts).
		Str("new_version", common.SchemaVersion).
		Msg("Market cache purged")

	if err := store.WriteRaw(metaSubdir, schemaVersionKey, []byte(common.SchemaVersion)); err != nil {
		logger.Error().Err(err).Msg("Failed to store schema version")
	}

	return true
}
