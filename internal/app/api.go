package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	v1 "github.com/akosarev/metaserve/internal/infrastructure/http/v1"
	"github.com/akosarev/metaserve/internal/infrastructure/http/v1/handler"
	"github.com/akosarev/metaserve/internal/repository/cache"
	"github.com/akosarev/metaserve/internal/repository/storage"
	"github.com/akosarev/metaserve/internal/usecase"
	"github.com/akosarev/metaserve/pkg/config"
	"github.com/akosarev/metaserve/pkg/logger"
	"github.com/akosarev/metaserve/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)

	l.Info("starting metaserve", "bucket", cfg.S3.Bucket, "metatile_size", cfg.Metatile.Size)

	// Initialize OpenTelemetry if enabled
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
		l.Info("telemetry initialized", "service", cfg.Telemetry.ServiceName)
	}

	// Initialize the S3 client
	s3Client, err := newS3Client(cfg.S3)
	if err != nil {
		l.Fatal("failed to initialize s3 client", "error", err)
	}

	// One process-wide metatile cache, torn down with the process.
	metatileCache := cache.NewLFUCache(int64(cfg.Metatile.CacheSizeMB) * 1000 * 1000)

	fetcher := storage.NewS3Storage(s3Client, storage.S3Config{
		Bucket:        cfg.S3.Bucket,
		RequesterPays: cfg.S3.RequesterPays,
	}, l)

	tileUseCase := usecase.NewTileUseCase(metatileCache, fetcher, usecase.TileConfig{
		KeyPrefix:     cfg.S3.Prefix,
		IncludeHash:   cfg.Metatile.IncludeHash,
		MetatileSize:  cfg.Metatile.Size,
		MaxDetailZoom: cfg.Metatile.MaxDetailZoom,
	}, l)

	h := handler.NewHandler(tileUseCase, cfg.Cache.MaxAge, cfg.Cache.SharedMaxAge, handler.PreviewConfig{
		TilesURLBase: cfg.Tiles.URLBase,
		APIKey:       cfg.Tiles.PreviewAPIKey,
	})

	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.Server.ReadTimeout,
		WriteTimeout: cfg.HTTP.Server.WriteTimeout,
		IdleTimeout:  cfg.HTTP.Server.IdleTimeout,
	}

	go func() {
		l.Info("starting http server", "port", cfg.HTTP.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Fatal("server forced to shutdown", "error", err)
	}

	l.Info("server stopped")
}

// newS3Client builds the client from the default AWS credential chain, with
// optional region and endpoint overrides (the latter for S3-compatible
// stores and localstack).
func newS3Client(cfg config.S3) (*s3.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
	}), nil
}
