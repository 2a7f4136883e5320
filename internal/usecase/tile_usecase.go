package usecase

import (
	"context"

	"github.com/akosarev/metaserve/internal/metatile"
	"github.com/akosarev/metaserve/internal/repository/cache"
	"github.com/akosarev/metaserve/internal/repository/storage"
	"github.com/akosarev/metaserve/pkg/logger"
	"github.com/akosarev/metaserve/pkg/metrics"
)

// All metatiles are built from a single merged layer.
const layer = "all"

type TileUseCase struct {
	cache         cache.MetatileCache
	fetcher       storage.Fetcher
	keyPrefix     string
	includeHash   bool
	metatileSize  int
	maxDetailZoom int
	logger        logger.Logger
}

type TileConfig struct {
	KeyPrefix     string
	IncludeHash   bool
	MetatileSize  int
	MaxDetailZoom int
}

func NewTileUseCase(c cache.MetatileCache, f storage.Fetcher, cfg TileConfig, l logger.Logger) *TileUseCase {
	return &TileUseCase{
		cache:         c,
		fetcher:       f,
		keyPrefix:     cfg.KeyPrefix,
		includeHash:   cfg.IncludeHash,
		metatileSize:  cfg.MetatileSize,
		maxDetailZoom: cfg.MaxDetailZoom,
		logger:        l,
	}
}

// GetTile resolves the requested tile to its metatile, takes the metatile
// from cache or fetches it, and extracts the offset tile. The returned tile
// inherits the metatile's freshness markers since the metatile is the unit
// the origin actually versions.
//
// Failures surface as storage.ErrNotModified, *storage.NotFoundError,
// *storage.FetchError or metatile.ErrTileNotFound; there are no retries.
func (uc *TileUseCase) GetTile(ctx context.Context, requested metatile.Tile, tileSize int, info metatile.CacheInfo) (*metatile.StorageResponse, error) {
	meta, offset, err := metatile.MetaAndOffset(requested, uc.metatileSize, tileSize, uc.maxDetailZoom)
	if err != nil {
		return nil, err
	}

	metaObj, err := uc.fetchMetatile(ctx, meta, info)
	if err != nil {
		return nil, err
	}

	tileData, err := metatile.ExtractTile(metaObj.Data, offset)
	if err != nil {
		return nil, err
	}

	return &metatile.StorageResponse{
		Data:      tileData,
		CacheInfo: metaObj.CacheInfo,
	}, nil
}

// fetchMetatile serves warm metatiles straight from the cache without
// consulting the client's freshness hints; only a successful origin fetch
// populates the cache, so not-modified/not-found outcomes never do.
//
// There is no in-flight deduplication: concurrent misses for the same
// metatile each fetch independently and last write wins, which is harmless
// since metatile content for a key is immutable.
func (uc *TileUseCase) fetchMetatile(ctx context.Context, meta metatile.Tile, info metatile.CacheInfo) (*metatile.StorageResponse, error) {
	if cached, ok := uc.cache.Get(meta); ok {
		metrics.MetatileCacheHits.Inc()
		uc.logger.Info("using cached metatile",
			"metatile", meta.String(),
			"cache_size_mb", float64(uc.cache.SizeBytes())/1000/1000,
		)
		return cached, nil
	}
	metrics.MetatileCacheMisses.Inc()

	key := metatile.ObjectKey(uc.keyPrefix, layer, meta, uc.includeHash)

	fetched, err := uc.fetcher.Fetch(ctx, key, info)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(meta, fetched)
	uc.logger.Info("cached metatile",
		"metatile", meta.String(),
		"key", key,
		"size", len(fetched.Data),
	)

	return fetched, nil
}
