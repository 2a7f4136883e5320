package metatile

import (
	"fmt"
	"math/bits"
)

// InvalidConfigError reports metatile/tile size parameters that can never
// produce a valid addressing scheme. It is raised at startup by config
// validation; MetaAndOffset returns it as well so the invariant holds even
// for callers that skip validation.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid metatile configuration: " + e.Reason
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func sizeToZoom(size int) int {
	return bits.TrailingZeros(uint(size))
}

// MetaAndOffset maps a requested tile to the metatile that contains it and
// the offset of the tile within that metatile's internal grid.
//
// metaSize and tileSize are tile counts per side and must be powers of two
// with tileSize <= metaSize. maxDetailZoom, when positive, caps the detail
// depth metatiles are rendered to: requests deeper than that are pointed at
// a metatile that may not exist, because a cheap 404 beats fetching and
// unzipping an archive that cannot contain the offset anyway.
func MetaAndOffset(requested Tile, metaSize, tileSize, maxDetailZoom int) (meta, offset Tile, err error) {
	if !isPowerOfTwo(metaSize) {
		return meta, offset, &InvalidConfigError{Reason: fmt.Sprintf("metatile size %d is not a power of two", metaSize)}
	}
	if !isPowerOfTwo(tileSize) {
		return meta, offset, &InvalidConfigError{Reason: fmt.Sprintf("tile size %d is not a power of two", tileSize)}
	}

	metaZoom := sizeToZoom(metaSize)
	tileZoom := sizeToZoom(tileSize)
	if tileZoom > metaZoom {
		return meta, offset, &InvalidConfigError{
			Reason: fmt.Sprintf("tile size must not be greater than metatile size, but %d > %d", tileSize, metaSize),
		}
	}

	deltaZ := metaZoom - tileZoom

	if requested.Z < deltaZ {
		// Below the metatile's base resolution everything collapses into
		// the root metatile, answered by its top-level entry.
		meta = Tile{Z: 0, X: 0, Y: 0, Format: FormatZip}
		offset = Tile{Z: 0, X: 0, Y: 0, Format: requested.Format}
		return meta, offset, nil
	}

	if maxDetailZoom > 0 && requested.Z-deltaZ > maxDetailZoom {
		// Clamp so the metatile zoom never drops below maxDetailZoom. min()
		// keeps the offset within the metatile's own zoom range.
		deltaZ = min(requested.Z-maxDetailZoom, metaZoom)
	}

	meta = Tile{
		Z:      requested.Z - deltaZ,
		X:      requested.X >> deltaZ,
		Y:      requested.Y >> deltaZ,
		Format: FormatZip,
	}
	offset = Tile{
		Z:      requested.Z - meta.Z,
		X:      requested.X - meta.X<<deltaZ,
		Y:      requested.Y - meta.Y<<deltaZ,
		Format: requested.Format,
	}
	return meta, offset, nil
}
