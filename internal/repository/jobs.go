// Package repository persists extraction jobs. Two stores implement the same
// interface: a pgx-backed postgres store for deployments and an embedded
// SQLite store for single-node and test use.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sistema-stock/ocr-service/internal/entity"
)

// JobRepository is the persistence contract for extraction jobs.
type JobRepository interface {
	// Insert stores a freshly accepted job.
	Insert(ctx context.Context, job *entity.ExtractionJob) error
	// GetByID returns the job or common.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error)
	// ListBetween returns jobs started in [from, to), oldest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.ExtractionJob, error)
	// MarkRunning transitions the job to RUNNING.
	MarkRunning(ctx context.Context, id uuid.UUID) error
	// FinishSuccess records text, result and confidence and transitions to DONE.
	FinishSuccess(ctx context.Context, id uuid.UUID, ocrText string, result json.RawMessage, confidence float32) error
	// FinishFailure records the error message and transitions to FAILED.
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
