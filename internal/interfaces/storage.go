package interfaces

import (
	"context"

	"github.com/bobmcallan/hearth/internal/models"
)

// MarketDataStorage caches price history per ticker
type MarketDataStorage interface {
	GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error)
	SaveMarketData(ctx context.Context, data *models.MarketData) error
}

// BlobStorage stores opaque binary artifacts such as rendered charts
type BlobStorage interface {
	// WriteRaw writes data to subdir/key atomically. Key is sanitized for safe filenames.
	WriteRaw(subdir, key string, data []byte) error

	// ReadRaw returns the bytes stored at subdir/key.
	ReadRaw(subdir, key string) ([]byte, error)
}
