package backend

import (
	"context"
	"io"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

// Client talks to the external download service.
type Client interface {
	// ListFormats asks the service which formats exist for url. A lookup
	// failure reported by the service comes back in the response's Error
	// field, not as an error.
	ListFormats(ctx context.Context, url string) (*models.FormatListResponse, error)

	// Download requests the binary for one format. The caller must close
	// the returned Body.
	Download(ctx context.Context, req models.DownloadRequest) (*Download, error)
}

// Download is a successful download response.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	// FileName is the name proposed by Content-Disposition, if any.
	FileName string
}
