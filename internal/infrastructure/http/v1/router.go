package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akosarev/metaserve/internal/infrastructure/http/v1/handler"
	"github.com/akosarev/metaserve/pkg/logger"
	"github.com/akosarev/metaserve/pkg/telemetry"
)

func NewRouter(handler *handler.Handler, l logger.Logger, telemetryEnabled bool) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled
	if telemetryEnabled {
		r.Use(telemetry.GinMiddleware("metaserve"))
	}

	r.Use(ginZapLogger(l))
	r.Use(cors.Default())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	tiles := r.Group("/tilezen/vector/v1")
	tiles.GET("/all/:z/:x/:file", handler.Tile)
	tiles.GET("/:size/all/:z/:x/:file", handler.Tile)

	r.GET("/preview.html", handler.PreviewHTML)

	api := r.Group("/api")
	v1 := api.Group("/v1")
	v1.GET("/healthz", handler.Healthz)

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("logger", l)

		start := time.Now()

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		l.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
