package metatile

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ObjectKey derives the object-store key for a metatile.
//
// The base shape is "<layer>/<z>/<x>/<y>.<format>". When includeHash is set
// a 5-hex-character md5 prefix of that path is prepended as its own segment,
// which spreads keys across the store's partitions. A non-empty prefix is
// prepended last. The returned key never starts with a separator.
func ObjectKey(prefix, layer string, meta Tile, includeHash bool) string {
	k := fmt.Sprintf("/%s/%d/%d/%d.%s", layer, meta.Z, meta.X, meta.Y, meta.Format)

	if includeHash {
		sum := md5.Sum([]byte(k))
		k = "/" + hex.EncodeToString(sum[:])[:5] + k
	}

	if prefix != "" {
		k = "/" + prefix + k
	}

	return k[1:]
}
