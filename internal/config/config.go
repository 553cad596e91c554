package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Download DownloadConfig
	Storage  StorageConfig
	S3       S3Config
	MongoDB  MongoDBConfig
	API      APIConfig
	Telegram TelegramConfig
}

type ServerConfig struct {
	Port       string
	Host       string
	SessionTTL time.Duration
	DevAssets  bool
}

type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type DownloadConfig struct {
	FileName          string
	PreserveExtension bool
}

type StorageConfig struct {
	Backend string
	Dir     string
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
	EndpointURL     string
	PresignExpiry   time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Enabled reports whether the download journal should be kept.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

type APIConfig struct {
	TokenSecret       string
	TokenTTL          time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type TelegramConfig struct {
	BotToken string
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.DevAssets = getEnvBool("DEV", false)
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.Server.SessionTTL = sessionTTL

	// Backend configuration. A zero timeout leaves requests bounded only by
	// the caller's context.
	cfg.Backend.URL = strings.TrimSuffix(getEnv("BACKEND_URL", "http://127.0.0.1:5000"), "/")
	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	cfg.Backend.Timeout = backendTimeout

	// Download configuration. Files are saved as "video.<ext>" by default;
	// DOWNLOAD_PRESERVE_EXTENSION=false saves them under the bare name.
	cfg.Download.FileName = getEnv("DOWNLOAD_FILE_NAME", "video")
	cfg.Download.PreserveExtension = getEnvBool("DOWNLOAD_PRESERVE_EXTENSION", true)

	// Storage configuration
	cfg.Storage.Backend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal))
	cfg.Storage.Dir = getEnv("DOWNLOAD_DIR", "downloads")
	switch cfg.Storage.Backend {
	case StorageLocal:
	case StorageS3:
		s3cfg, err := loadS3Config()
		if err != nil {
			return nil, err
		}
		cfg.S3 = s3cfg
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want %q or %q", cfg.Storage.Backend, StorageLocal, StorageS3)
	}

	// MongoDB configuration, optional
	cfg.MongoDB.URI = getEnv("MONGODB_URI", "")
	cfg.MongoDB.Database = getEnv("MONGODB_DATABASE", "vidgrab")
	mongoTimeout, err := time.ParseDuration(getEnv("MONGODB_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGODB_TIMEOUT: %w", err)
	}
	cfg.MongoDB.Timeout = mongoTimeout

	// API configuration
	cfg.API.TokenSecret = getEnv("TOKEN_SECRET", "dev-token-secret-change-in-production-must-be-at-least-32-chars")
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.API.TokenTTL = tokenTTL
	cfg.API.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 100)
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.API.RateLimitWindow = rateLimitWindow

	// Telegram configuration, optional
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")

	return cfg, nil
}

func loadS3Config() (S3Config, error) {
	presignExpiry, err := time.ParseDuration(getEnv("S3_PRESIGN_EXPIRY", "24h"))
	if err != nil {
		return S3Config{}, fmt.Errorf("invalid S3_PRESIGN_EXPIRY: %w", err)
	}
	return S3Config{
		Region:          getEnv("AWS_REGION", "us-east-1"),
		BucketName:      getEnvRequired("S3_BUCKET_NAME"),
		Prefix:          strings.Trim(getEnv("S3_PREFIX", "downloads"), "/"),
		EndpointURL:     getEnv("AWS_ENDPOINT_URL", ""), // Optional for LocalStack
		AccessKeyID:     getEnvRequired("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: getEnvRequired("AWS_SECRET_ACCESS_KEY"),
		PresignExpiry:   presignExpiry,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
