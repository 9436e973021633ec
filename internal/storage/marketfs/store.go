// Package marketfs implements file-based storage for cached price history and chart images.
package marketfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/interfaces"
	"github.com/bobmcallan/hearth/internal/models"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

const (
	historySubdir = "history"
	ChartsSubdir  = "charts"
)

// Store provides file-based JSON storage for market data and raw blobs.
type Store struct {
	basePath   string
	historyDir string
	logger     *common.Logger
	now        func() time.Time
}

// NewMarketStore creates a new market file store rooted at path.
func NewMarketStore(logger *common.Logger, path string) (*Store, error) {
	historyDir := filepath.Join(path, historySubdir)
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create market store path %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		basePath:   path,
		historyDir: historyDir,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// MarketDataStorage returns the market data storage interface.
func (s *Store) MarketDataStorage() interfaces.MarketDataStorage {
	return &marketDataStorage{store: s}
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, sanitizeKey(subdir))
	return writeAtomic(dir, filepath.Join(dir, sanitizeKey(key)), data)
}

// ReadRaw reads binary data written by WriteRaw.
func (s *Store) ReadRaw(subdir, key string) ([]byte, error) {
	path := filepath.Join(s.basePath, sanitizeKey(subdir), sanitizeKey(key))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("'%s/%s' %w", subdir, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// PurgeMarket removes all cached price history and returns the count.
func (s *Store) PurgeMarket() int {
	return purgeFiles(s.historyDir)
}

// PurgeCharts removes all chart files and returns the count.
func (s *Store) PurgeCharts() int {
	return purgeFiles(filepath.Join(s.basePath, ChartsSubdir))
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')
	return writeAtomic(dir, filePath(dir, key), jsonData)
}

// writeAtomic writes via a temp file in the same directory and renames it into place.
func writeAtomic(dir, target string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func purgeFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			count++
		}
	}
	return count
}

// --- MarketDataStorage ---

type marketDataStorage struct {
	store *Store
}

func (m *marketDataStorage) GetMarketData(_ context.Context, ticker string) (*models.MarketData, error) {
	var data models.MarketData
	if err := readJSON(m.store.historyDir, ticker, &data); err != nil {
		return nil, fmt.Errorf("market data for %w", err)
	}
	return &data, nil
}

func (m *marketDataStorage) SaveMarketData(_ context.Context, data *models.MarketData) error {
	data.LastUpdated = m.store.now()
	if err := writeJSON(m.store.historyDir, data.Ticker, data); err != nil {
		return fmt.Errorf("failed to save market data: %w", err)
	}
	m.store.logger.Debug().Str("ticker", data.Ticker).Int("bars", len(data.EOD)).Msg("Market data saved")
	return nil
}

var _ interfaces.BlobStorage = (*Store)(nil)
