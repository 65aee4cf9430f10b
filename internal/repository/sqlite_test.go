package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

func newTestRepo(t *testing.T) JobRepository {
	t.Helper()
	repo, err := openSQLite(context.Background(), ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestJob(url string) *entity.ExtractionJob {
	cb := "https://stock.example.com/callback"
	return &entity.ExtractionJob{
		ID:          uuid.New(),
		ImageURL:    url,
		CallbackURL: &cb,
		Status:      constants.JobStatusQueued,
		StartedAt:   time.Now().UTC(),
	}
}

func TestSQLiteJobRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.Ping(ctx))

	job := newTestJob("https://img.example.com/albaran.jpg")
	require.NoError(t, repo.Insert(ctx, job))

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.ImageURL, got.ImageURL)
	require.NotNil(t, got.CallbackURL)
	assert.Equal(t, *job.CallbackURL, *got.CallbackURL)
	assert.Equal(t, constants.JobStatusQueued, got.Status)
	assert.True(t, got.StartedAt.Equal(job.StartedAt))
	assert.Nil(t, got.FinishedAt)
	assert.Nil(t, got.Confidence)
}

func TestSQLiteJobLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	job := newTestJob("https://img.example.com/factura.jpg")
	require.NoError(t, repo.Insert(ctx, job))

	require.NoError(t, repo.MarkRunning(ctx, job.ID))
	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, got.Status)

	result := json.RawMessage(`{"success":true}`)
	require.NoError(t, repo.FinishSuccess(ctx, job.ID, "FACTURA HDS-2024", result, 0.82))

	got, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusDone, got.Status)
	require.NotNil(t, got.FinishedAt)
	require.NotNil(t, got.OCRText)
	assert.Equal(t, "FACTURA HDS-2024", *got.OCRText)
	assert.JSONEq(t, string(result), string(got.ResultJSON))
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.82, *got.Confidence, 1e-6)
}

func TestSQLiteJobFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	job := newTestJob("https://img.example.com/roto.jpg")
	require.NoError(t, repo.Insert(ctx, job))
	require.NoError(t, repo.FinishFailure(ctx, job.ID, "image too large"))

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "image too large", *got.ErrorMessage)
	assert.Nil(t, got.OCRText)
}

func TestSQLiteJobNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteListBetween(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC)
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		job := newTestJob("https://img.example.com/doc.jpg")
		job.StartedAt = base.Add(time.Duration(i) * time.Hour)
		ids[i] = job.ID
		require.NoError(t, repo.Insert(ctx, job))
	}

	jobs, err := repo.ListBetween(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, ids[0], jobs[0].ID)
	assert.Equal(t, ids[1], jobs[1].ID)

	jobs, err = repo.ListBetween(ctx, base.Add(48*time.Hour), base.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
