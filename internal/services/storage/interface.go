package storage

import (
	"context"
	"io"
	"time"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

// Saver is a destination for downloaded files.
type Saver interface {
	// Save consumes body and stores it under name (or a variant of it when
	// name is taken), returning where it ended up.
	Save(ctx context.Context, name string, body io.Reader, contentType string) (*models.SavedFile, error)
}

// StorageInterface is an object-store Saver addressed by key.
type StorageInterface interface {
	Saver
	BucketName() string
	Upload(ctx context.Context, key string, data io.Reader, contentType string, metadata map[string]string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Checker is implemented by destinations that can report their health.
type Checker interface {
	Check(ctx context.Context) error
}
