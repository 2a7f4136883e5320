package metatile

import (
	"errors"
	"testing"
)

func TestMetaAndOffset(t *testing.T) {
	tests := []struct {
		name          string
		requested     Tile
		metaSize      int
		tileSize      int
		maxDetailZoom int
		wantMeta      Tile
		wantOffset    Tile
	}{
		{
			name:       "metatile size 8 with max detail clamp inactive",
			requested:  Tile{Z: 5, X: 10, Y: 12, Format: "mvt"},
			metaSize:   8,
			tileSize:   1,
			wantMeta:   Tile{Z: 2, X: 1, Y: 1, Format: "zip"},
			wantOffset: Tile{Z: 3, X: 2, Y: 4, Format: "mvt"},
		},
		{
			name:          "max detail zoom set but not exceeded",
			requested:     Tile{Z: 5, X: 10, Y: 12, Format: "mvt"},
			metaSize:      8,
			tileSize:      1,
			maxDetailZoom: 12,
			wantMeta:      Tile{Z: 2, X: 1, Y: 1, Format: "zip"},
			wantOffset:    Tile{Z: 3, X: 2, Y: 4, Format: "mvt"},
		},
		{
			name:       "zoom below delta collapses to root metatile",
			requested:  Tile{Z: 1, X: 1, Y: 0, Format: "json"},
			metaSize:   8,
			tileSize:   1,
			wantMeta:   Tile{Z: 0, X: 0, Y: 0, Format: "zip"},
			wantOffset: Tile{Z: 0, X: 0, Y: 0, Format: "json"},
		},
		{
			name:       "zoom zero at unit metatile",
			requested:  Tile{Z: 0, X: 0, Y: 0, Format: "json"},
			metaSize:   1,
			tileSize:   1,
			wantMeta:   Tile{Z: 0, X: 0, Y: 0, Format: "zip"},
			wantOffset: Tile{Z: 0, X: 0, Y: 0, Format: "json"},
		},
		{
			name:       "tile size equal to metatile size",
			requested:  Tile{Z: 7, X: 100, Y: 50, Format: "mvt"},
			metaSize:   4,
			tileSize:   4,
			wantMeta:   Tile{Z: 7, X: 100, Y: 50, Format: "zip"},
			wantOffset: Tile{Z: 0, X: 0, Y: 0, Format: "mvt"},
		},
		{
			name:       "larger tile size halves the delta",
			requested:  Tile{Z: 10, X: 515, Y: 386, Format: "mvt"},
			metaSize:   8,
			tileSize:   2,
			wantMeta:   Tile{Z: 8, X: 128, Y: 96, Format: "zip"},
			wantOffset: Tile{Z: 2, X: 3, Y: 2, Format: "mvt"},
		},
		{
			name:          "clamp widens delta past max detail zoom",
			requested:     Tile{Z: 15, X: 1000, Y: 2000, Format: "mvt"},
			metaSize:      8,
			tileSize:      1,
			maxDetailZoom: 10,
			// deltaZ clamps from 3 to min(15-10, 3) = 3, unchanged here
			wantMeta:   Tile{Z: 12, X: 125, Y: 250, Format: "zip"},
			wantOffset: Tile{Z: 3, X: 0, Y: 0, Format: "mvt"},
		},
		{
			name:          "clamp deepens offset when tile size exceeds available detail",
			requested:     Tile{Z: 14, X: 1600, Y: 800, Format: "mvt"},
			metaSize:      8,
			tileSize:      2,
			maxDetailZoom: 10,
			// unclamped deltaZ is 2 (meta zoom 12 > maxDetailZoom), so the
			// clamp widens it: deltaZ = min(14-10, 3) = 3. The offset zoom
			// now exceeds the original delta, which is the intended "cheap
			// 404" trade-off.
			wantMeta:   Tile{Z: 11, X: 200, Y: 100, Format: "zip"},
			wantOffset: Tile{Z: 3, X: 0, Y: 0, Format: "mvt"},
		},
		{
			name:          "clamp cannot exceed metatile zoom with small metatile",
			requested:     Tile{Z: 10, X: 512, Y: 512, Format: "json"},
			metaSize:      2,
			tileSize:      1,
			maxDetailZoom: 5,
			// z - maxDetailZoom = 5 but log2(metaSize) = 1 wins the min()
			wantMeta:   Tile{Z: 9, X: 256, Y: 256, Format: "zip"},
			wantOffset: Tile{Z: 1, X: 0, Y: 0, Format: "json"},
		},
		{
			name:          "max detail zoom zero disables the clamp",
			requested:     Tile{Z: 15, X: 0, Y: 0, Format: "mvt"},
			metaSize:      8,
			tileSize:      1,
			maxDetailZoom: 0,
			wantMeta:      Tile{Z: 12, X: 0, Y: 0, Format: "zip"},
			wantOffset:    Tile{Z: 3, X: 0, Y: 0, Format: "mvt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, offset, err := MetaAndOffset(tt.requested, tt.metaSize, tt.tileSize, tt.maxDetailZoom)
			if err != nil {
				t.Fatalf("MetaAndOffset returned error: %v", err)
			}
			if meta != tt.wantMeta {
				t.Errorf("meta = %v, want %v", meta, tt.wantMeta)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %v, want %v", offset, tt.wantOffset)
			}
		})
	}
}

func TestMetaAndOffsetInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		metaSize int
		tileSize int
	}{
		{"metatile size not power of two", 6, 1},
		{"metatile size zero", 0, 1},
		{"metatile size negative", -4, 1},
		{"tile size not power of two", 8, 3},
		{"tile size zero", 8, 0},
		{"tile size greater than metatile size", 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MetaAndOffset(Tile{Z: 5, X: 1, Y: 1, Format: "mvt"}, tt.metaSize, tt.tileSize, 0)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var cfgErr *InvalidConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *InvalidConfigError, got %T: %v", err, err)
			}
		})
	}
}

// Round-trip law: the requested coordinate is always reconstructible from
// meta and offset via z = meta.Z + offset.Z, x = meta.X<<offset.Z + offset.X.
func TestMetaAndOffsetRoundTrip(t *testing.T) {
	for _, metaSize := range []int{1, 2, 4, 8} {
		for _, tileSize := range []int{1, 2} {
			if tileSize > metaSize {
				continue
			}
			deltaZ := log2(metaSize) - log2(tileSize)
			for z := deltaZ; z <= deltaZ+6; z++ {
				for _, xy := range [][2]int{{0, 0}, {1, 2}, {10, 12}, {(1 << z) - 1, (1 << z) - 1}} {
					requested := Tile{Z: z, X: xy[0], Y: xy[1], Format: "mvt"}
					meta, offset, err := MetaAndOffset(requested, metaSize, tileSize, 0)
					if err != nil {
						t.Fatalf("MetaAndOffset(%v, %d, %d): %v", requested, metaSize, tileSize, err)
					}

					if offset.Z < 0 || offset.Z > deltaZ {
						t.Errorf("offset zoom %d out of [0,%d] for %v", offset.Z, deltaZ, requested)
					}
					if offset.X < 0 || offset.X >= 1<<offset.Z || offset.Y < 0 || offset.Y >= 1<<offset.Z {
						t.Errorf("offset %v out of range for %v", offset, requested)
					}

					got := Tile{
						Z:      meta.Z + offset.Z,
						X:      meta.X<<offset.Z + offset.X,
						Y:      meta.Y<<offset.Z + offset.Y,
						Format: offset.Format,
					}
					if got != requested {
						t.Errorf("round trip: got %v, want %v (meta %v offset %v)", got, requested, meta, offset)
					}
				}
			}
		}
	}
}

func log2(n int) int {
	z := 0
	for n > 1 {
		n >>= 1
		z++
	}
	return z
}
