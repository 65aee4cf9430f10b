package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

type stubJobs struct {
	jobs []*entity.ExtractionJob
}

func (s *stubJobs) Insert(context.Context, *entity.ExtractionJob) error { return nil }
func (s *stubJobs) GetByID(context.Context, uuid.UUID) (*entity.ExtractionJob, error) {
	return nil, nil
}
func (s *stubJobs) ListBetween(context.Context, time.Time, time.Time) ([]*entity.ExtractionJob, error) {
	return s.jobs, nil
}
func (s *stubJobs) MarkRunning(context.Context, uuid.UUID) error { return nil }
func (s *stubJobs) FinishSuccess(context.Context, uuid.UUID, string, json.RawMessage, float32) error {
	return nil
}
func (s *stubJobs) FinishFailure(context.Context, uuid.UUID, string) error { return nil }
func (s *stubJobs) Ping(context.Context) error                             { return nil }
func (s *stubJobs) Close() error                                           { return nil }

func doneJob(t *testing.T) *entity.ExtractionJob {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"success":              true,
		"processing_id":        uuid.NewString(),
		"proveedor":            map[string]any{"nombre": "Huerta Del Sur S.L.", "confianza": 0.8},
		"documento":            map[string]any{"tipo": "factura", "numero": "HDS-2024-0891", "total": 165.50},
		"productos":            []map[string]any{{"nombre": "Tomate", "cantidad": 5.5, "unidad": "kg", "confianza": 0.95}},
		"texto_completo":       "FACTURA",
		"confianza_general":    0.9,
		"tiempo_procesamiento": 1.2,
	})
	require.NoError(t, err)

	conf := float32(0.9)
	return &entity.ExtractionJob{
		ID:         uuid.New(),
		ImageURL:   "https://img.example.com/factura.jpg",
		Status:     constants.JobStatusDone,
		StartedAt:  time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC),
		ResultJSON: raw,
		Confidence: &conf,
	}
}

func TestExportJobsXLSX(t *testing.T) {
	msg := "image too large"
	failed := &entity.ExtractionJob{
		ID:           uuid.New(),
		ImageURL:     "https://img.example.com/roto.jpg",
		Status:       constants.JobStatusFailed,
		StartedAt:    time.Date(2024, 9, 16, 10, 0, 0, 0, time.UTC),
		ErrorMessage: &msg,
	}
	svc := NewService(&stubJobs{jobs: []*entity.ExtractionJob{doneJob(t), failed}}, nil)

	data, err := svc.ExportJobsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("Extracciones")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "Proveedor", rows[0][2])

	assert.Equal(t, "2024-09-15", rows[1][0])
	assert.Equal(t, "DONE", rows[1][1])
	assert.Equal(t, "Huerta Del Sur S.L.", rows[1][2])
	assert.Equal(t, "factura", rows[1][3])
	assert.Equal(t, "HDS-2024-0891", rows[1][4])
	assert.Equal(t, "165.50", rows[1][5])
	assert.Equal(t, "1", rows[1][6])
	assert.Equal(t, "0.90", rows[1][7])

	assert.Equal(t, "FAILED", rows[2][1])
	assert.Contains(t, rows[2][len(rows[2])-1], "image too large")
}

func TestExportJobsXLSXEmpty(t *testing.T) {
	svc := NewService(&stubJobs{}, nil)
	data, err := svc.ExportJobsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("Extracciones")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
