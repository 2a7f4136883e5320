package metatile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrTileNotFound means the metatile archive was fetched and opened but does
// not contain the requested offset entry. Sparse metatiles and offsets past
// the max-detail-zoom clamp both land here; it is distinct from the metatile
// itself being missing.
var ErrTileNotFound = errors.New("tile not found in metatile")

// ExtractTile reads the offset tile's bytes out of an in-memory metatile
// archive. The entry name is "<z>/<x>/<y>.<format>" relative to the archive
// root.
func ExtractTile(archive []byte, offset Tile) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open metatile archive: %w", err)
	}

	f, err := zr.Open(offset.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTileNotFound, offset)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from metatile archive: %w", offset, err)
	}

	return data, nil
}
