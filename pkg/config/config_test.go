package config

import (
	"testing"
)

func baseConfig() *Config {
	cfg := &Config{}
	cfg.S3.Bucket = "tiles-bucket"
	cfg.Metatile.Size = 4
	cfg.Metatile.CacheSizeMB = 100
	return cfg
}

func TestValidate(t *testing.T) {
	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsNonPowerOfTwoMetatileSize(t *testing.T) {
	for _, size := range []int{3, 6, 12, 100} {
		cfg := baseConfig()
		cfg.Metatile.Size = size
		if err := cfg.Validate(); err == nil {
			t.Errorf("METATILE_SIZE=%d accepted, want error", size)
		}
	}
}

func TestValidateRejectsMissingBucket(t *testing.T) {
	cfg := baseConfig()
	cfg.S3.Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty S3 bucket accepted, want error")
	}
}

func TestValidateRejectsNonPositiveCacheSize(t *testing.T) {
	cfg := baseConfig()
	cfg.Metatile.CacheSizeMB = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero cache size accepted, want error")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("S3_BUCKET", "tiles-bucket")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Metatile.Size != 4 {
		t.Errorf("Metatile.Size = %d, want default 4", cfg.Metatile.Size)
	}
	if !cfg.Metatile.IncludeHash {
		t.Error("Metatile.IncludeHash should default to true")
	}
	if cfg.Metatile.CacheSizeMB != 100 {
		t.Errorf("Metatile.CacheSizeMB = %d, want default 100", cfg.Metatile.CacheSizeMB)
	}
	if cfg.Cache.MaxAge != 1200 || cfg.Cache.SharedMaxAge != 600 {
		t.Errorf("Cache = %+v, want max-age 1200 / s-maxage 600", cfg.Cache)
	}
	if cfg.HTTP.Server.Port != "8080" {
		t.Errorf("HTTP.Server.Port = %q, want 8080", cfg.HTTP.Server.Port)
	}
}

func TestNewRejectsBadMetatileSize(t *testing.T) {
	t.Setenv("S3_BUCKET", "tiles-bucket")
	t.Setenv("METATILE_SIZE", "6")

	if _, err := New(); err == nil {
		t.Fatal("METATILE_SIZE=6 accepted, want error")
	}
}
