package handler

import (
	"context"
	"fmt"

	"github.com/akosarev/metaserve/internal/metatile"
)

// TileService resolves, fetches and extracts one tile. Implemented by
// usecase.TileUseCase.
type TileService interface {
	GetTile(ctx context.Context, requested metatile.Tile, tileSize int, info metatile.CacheInfo) (*metatile.StorageResponse, error)
}

// PreviewConfig feeds the /preview.html page.
type PreviewConfig struct {
	TilesURLBase string
	APIKey       string
}

type Handler struct {
	tileService  TileService
	cacheControl string
	preview      PreviewConfig
}

// NewHandler builds the tile handler. maxAge and sharedMaxAge become the
// Cache-Control directives on successful tile responses.
func NewHandler(ts TileService, maxAge, sharedMaxAge int, preview PreviewConfig) *Handler {
	cc := fmt.Sprintf("public, max-age=%d", maxAge)
	if sharedMaxAge > 0 {
		cc += fmt.Sprintf(", s-maxage=%d", sharedMaxAge)
	}

	return &Handler{
		tileService:  ts,
		cacheControl: cc,
		preview:      preview,
	}
}
