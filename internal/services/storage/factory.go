package storage

import (
	"fmt"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// NewSaver creates the destination selected by STORAGE_BACKEND.
func NewSaver(cfg *config.Config) (Saver, error) {
	logger := utils.GetLogger()

	switch cfg.Storage.Backend {
	case config.StorageS3:
		logger.Infof("Creating S3 storage (bucket: %s, endpoint: %s)", cfg.S3.BucketName, cfg.S3.EndpointURL)
		s, err := NewS3Storage(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return s, nil
	case config.StorageLocal, "":
		logger.Infof("Creating local storage (dir: %s)", cfg.Storage.Dir)
		s, err := NewLocalSaver(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
