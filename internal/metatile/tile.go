// Package metatile implements tile-to-metatile addressing, object key
// derivation and archive extraction for metatile-backed tile serving.
package metatile

import (
	"fmt"
	"time"
)

// FormatZip is the format carried by every metatile coordinate. Leaf tile
// coordinates keep whatever format the client requested.
const FormatZip = "zip"

// Tile identifies a single tile or metatile. It is a value type and is used
// directly as a cache key.
type Tile struct {
	Z      int
	X      int
	Y      int
	Format string
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d.%s", t.Z, t.X, t.Y, t.Format)
}

// CacheInfo carries conditional-request freshness markers. A zero
// LastModified or empty ETag means the marker is absent.
type CacheInfo struct {
	LastModified time.Time
	ETag         string
}

// StorageResponse is the unit held in the metatile cache and returned to the
// handler: raw bytes plus the freshness markers the origin reported for them.
type StorageResponse struct {
	Data      []byte
	CacheInfo CacheInfo
}
