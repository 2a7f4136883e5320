package cache

import "github.com/akosarev/metaserve/internal/metatile"

// MetatileCache holds fetched metatiles keyed by metatile coordinate. A Get
// counts as a use for eviction purposes and deliberately ignores any client
// freshness hints: a warm entry is always served as-is.
type MetatileCache interface {
	Get(metatile.Tile) (*metatile.StorageResponse, bool)
	Set(metatile.Tile, *metatile.StorageResponse)
	SizeBytes() int64
}
