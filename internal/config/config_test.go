package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "BACKEND_URL", "DOWNLOAD_FILE_NAME", "DOWNLOAD_PRESERVE_EXTENSION", "STORAGE_BACKEND", "MONGODB_URI", "TELEGRAM_BOT_TOKEN", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Backend.URL != "http://127.0.0.1:5000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Download.FileName != "video" || !cfg.Download.PreserveExtension {
		t.Errorf("Download = %+v", cfg.Download)
	}
	if cfg.Storage.Backend != StorageLocal {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Server.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.Server.SessionTTL)
	}
	if cfg.MongoDB.Enabled() || cfg.Telegram.Enabled() {
		t.Error("optional services should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://downloader:5000/")
	t.Setenv("DOWNLOAD_FILE_NAME", "clip")
	t.Setenv("DOWNLOAD_PRESERVE_EXTENSION", "false")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_PREFIX", "/grabs/")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("RATE_LIMIT_REQUESTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.URL != "http://downloader:5000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Download.FileName != "clip" || cfg.Download.PreserveExtension {
		t.Errorf("Download = %+v", cfg.Download)
	}
	if cfg.Storage.Backend != StorageS3 || cfg.S3.BucketName != "bucket" || cfg.S3.Prefix != "grabs" {
		t.Errorf("storage = %q %+v", cfg.Storage.Backend, cfg.S3)
	}
	if !cfg.MongoDB.Enabled() {
		t.Error("MongoDB should be enabled")
	}
	if cfg.API.RateLimitRequests != 7 {
		t.Errorf("RateLimitRequests = %d", cfg.API.RateLimitRequests)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"STORAGE_BACKEND", "ftp"},
		{"SESSION_TTL", "soon"},
		{"BACKEND_TIMEOUT", "10"},
		{"TOKEN_TTL", "forever"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("VIDGRAB_TEST_INT", "notanumber")
	t.Setenv("VIDGRAB_TEST_BOOL", "yes")

	if got := getEnvInt("VIDGRAB_TEST_INT", 5); got != 5 {
		t.Errorf("getEnvInt fallback = %d", got)
	}
	if got := getEnvBool("VIDGRAB_TEST_BOOL", true); !got {
		t.Error("getEnvBool should fall back on unparseable values")
	}
	if got := getEnv("VIDGRAB_TEST_UNSET", "d"); got != "d" {
		t.Errorf("getEnv = %q", got)
	}
}
