package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		S3        S3        `envPrefix:"S3_"`
		Metatile  Metatile  `envPrefix:"METATILE_"`
		Tiles     Tiles     `envPrefix:"TILES_"`
		Cache     Cache     `envPrefix:"CACHE_"`
	}

	HTTP struct {
		Server Server `envPrefix:"SERVER_"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"metaserve"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	S3 struct {
		Bucket        string `env:"BUCKET,required" validate:"required"`
		Prefix        string `env:"PREFIX"`
		Region        string `env:"REGION"`
		Endpoint      string `env:"ENDPOINT"`
		RequesterPays bool   `env:"REQUESTER_PAYS" envDefault:"false"`
	}

	Metatile struct {
		// Size is the metatile edge length in tiles; must be a power of two.
		Size int `env:"SIZE" envDefault:"4" validate:"gt=0"`
		// MaxDetailZoom caps the zoom metatiles are rendered down to;
		// 0 disables the cap.
		MaxDetailZoom int `env:"MAX_DETAIL_ZOOM" envDefault:"0" validate:"gte=0"`
		// CacheSizeMB is the in-memory metatile cache budget in megabytes.
		CacheSizeMB int `env:"CACHE_SIZE_MB" envDefault:"100" validate:"gt=0"`
		// IncludeHash toggles the 5-hex md5 segment in object keys.
		IncludeHash bool `env:"INCLUDE_HASH" envDefault:"true"`
	}

	Tiles struct {
		// URLBase and PreviewAPIKey feed the /preview.html page only.
		URLBase       string `env:"URL_BASE"`
		PreviewAPIKey string `env:"PREVIEW_API_KEY"`
	}

	Cache struct {
		// MaxAge and SharedMaxAge drive the Cache-Control header on tile
		// responses; SharedMaxAge 0 omits s-maxage.
		MaxAge       int `env:"MAX_AGE" envDefault:"1200" validate:"gte=0"`
		SharedMaxAge int `env:"SHARED_MAX_AGE" envDefault:"600" validate:"gte=0"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the addressing scheme can never serve.
// Called once at startup so size errors fail the process instead of
// individual requests.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !isPowerOfTwo(c.Metatile.Size) {
		return fmt.Errorf("invalid configuration: METATILE_SIZE %d is not a power of two", c.Metatile.Size)
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
