package database

import (
	"context"
	"sync"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

// Journal is the download history as the API and the controllers use it.
type Journal interface {
	RecordDownload(ctx context.Context, record models.DownloadRecord) error
	ListDownloads(ctx context.Context, sessionID string, limit int) ([]models.DownloadRecord, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MemoryJournal keeps the most recent records in process. It is used when
// MONGODB_URI is not set.
type MemoryJournal struct {
	mu       sync.Mutex
	records  []models.DownloadRecord
	capacity int
}

func NewMemoryJournal(capacity int) *MemoryJournal {
	if capacity <= 0 {
		capacity = maxListLimit
	}
	return &MemoryJournal{capacity: capacity}
}

func (j *MemoryJournal) RecordDownload(ctx context.Context, record models.DownloadRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	if over := len(j.records) - j.capacity; over > 0 {
		j.records = append([]models.DownloadRecord(nil), j.records[over:]...)
	}
	return nil
}

func (j *MemoryJournal) ListDownloads(ctx context.Context, sessionID string, limit int) ([]models.DownloadRecord, error) {
	limit = ClampLimit(limit)

	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]models.DownloadRecord, 0, limit)
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		if sessionID != "" && j.records[i].SessionID != sessionID {
			continue
		}
		out = append(out, j.records[i])
	}
	return out, nil
}

func (j *MemoryJournal) Ping(ctx context.Context) error {
	return nil
}

func (j *MemoryJournal) Close(ctx context.Context) error {
	return nil
}
