package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akosarev/metaserve/internal/metatile"
	"github.com/akosarev/metaserve/internal/repository/storage"
	"github.com/akosarev/metaserve/pkg/logger"
	"github.com/akosarev/metaserve/pkg/metrics"
)

// mimeTypes maps tile formats to response content types. Requests for
// anything else are rejected before they reach the core.
var mimeTypes = map[string]string{
	"json":     "application/json",
	"mvt":      "application/x-protobuf",
	"mvtb":     "application/x-protobuf",
	"topojson": "application/json",
}

const basePixelSize = 256

func (h *Handler) Tile(c *gin.Context) {
	log, _ := c.Get("logger")
	l := log.(logger.Logger)

	strZ := c.Param("z")
	strX := c.Param("x")
	file := c.Param("file")

	z, err := strconv.Atoi(strZ)
	if err != nil || z < 0 {
		l.Warn("invalid z parameter", "z", strZ, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "z should be a non-negative integer",
		})
		return
	}

	x, err := strconv.Atoi(strX)
	if err != nil || x < 0 {
		l.Warn("invalid x parameter", "x", strX, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "x should be a non-negative integer",
		})
		return
	}

	strY, format, ok := strings.Cut(file, ".")
	y, err := strconv.Atoi(strY)
	if !ok || err != nil || y < 0 {
		l.Warn("invalid tile file parameter", "file", file)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tile must be addressed as <y>.<format>",
		})
		return
	}

	mime, ok := mimeTypes[format]
	if !ok {
		l.Warn("unsupported tile format", "format", format)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported tile format " + format,
		})
		return
	}

	tileSize, ok := h.tileSizeParam(c, l)
	if !ok {
		return
	}

	requested := metatile.Tile{Z: z, X: x, Y: y, Format: format}
	info := requestCacheInfo(c, l)

	result, err := h.tileService.GetTile(c.Request.Context(), requested, tileSize, info)
	if err != nil {
		h.tileError(c, l, requested, err)
		return
	}

	metrics.TileRequests.WithLabelValues("ok").Inc()

	if !result.CacheInfo.LastModified.IsZero() {
		c.Header("Last-Modified", result.CacheInfo.LastModified.UTC().Format(http.TimeFormat))
	}
	if result.CacheInfo.ETag != "" {
		c.Header("ETag", `"`+result.CacheInfo.ETag+`"`)
	}
	c.Header("Cache-Control", h.cacheControl)
	c.Data(http.StatusOK, mime, result.Data)
}

// tileSizeParam reads the optional pixel-size path segment. It must be a
// positive multiple of the 256px base tile; absence means one base tile.
func (h *Handler) tileSizeParam(c *gin.Context, l logger.Logger) (int, bool) {
	strSize := c.Param("size")
	if strSize == "" {
		return 1, true
	}

	px, err := strconv.Atoi(strSize)
	if err != nil || px <= 0 || px%basePixelSize != 0 {
		l.Warn("invalid tile pixel size", "size", strSize, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid tile size: " + strSize + " is not a multiple of 256",
		})
		return 0, false
	}

	return px / basePixelSize, true
}

// requestCacheInfo maps the client's conditional headers into freshness
// hints. A malformed If-Modified-Since is dropped rather than rejected.
func requestCacheInfo(c *gin.Context, l logger.Logger) metatile.CacheInfo {
	info := metatile.CacheInfo{
		ETag: c.GetHeader("If-None-Match"),
	}

	if ims := c.GetHeader("If-Modified-Since"); ims != "" {
		t, err := http.ParseTime(ims)
		if err != nil {
			l.Warn("unparseable If-Modified-Since header", "value", ims, "error", err)
		} else {
			info.LastModified = t
		}
	}

	return info
}

func (h *Handler) tileError(c *gin.Context, l logger.Logger, requested metatile.Tile, err error) {
	var (
		nfErr  *storage.NotFoundError
		fErr   *storage.FetchError
		cfgErr *metatile.InvalidConfigError
	)

	switch {
	case errors.Is(err, storage.ErrNotModified):
		metrics.TileRequests.WithLabelValues("not_modified").Inc()
		c.Status(http.StatusNotModified)

	case errors.As(err, &nfErr):
		metrics.TileRequests.WithLabelValues("metatile_not_found").Inc()
		l.Warn("could not find metatile", "tile", requested.String(), "error", err)
		c.String(http.StatusNotFound, "Metatile not found")

	case errors.Is(err, metatile.ErrTileNotFound):
		metrics.TileRequests.WithLabelValues("tile_not_found").Inc()
		l.Warn("could not find tile in metatile", "tile", requested.String(), "error", err)
		c.String(http.StatusNotFound, "Tile not found")

	case errors.As(err, &cfgErr):
		metrics.TileRequests.WithLabelValues("bad_config").Inc()
		l.Error("invalid addressing configuration", "tile", requested.String(), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})

	case errors.As(err, &fErr):
		metrics.TileRequests.WithLabelValues("fetch_error").Inc()
		l.Error("error fetching metatile", "tile", requested.String(), "error", err)
		c.String(http.StatusInternalServerError, "Metatile fetch problem")

	default:
		metrics.TileRequests.WithLabelValues("error").Inc()
		l.Error("failed to get tile", "tile", requested.String(), "error", err)
		c.String(http.StatusInternalServerError, "Metatile fetch problem")
	}
}
