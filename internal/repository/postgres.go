package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id            UUID PRIMARY KEY,
	image_url     TEXT NOT NULL,
	callback_url  TEXT,
	status        TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ,
	ocr_text      TEXT,
	result_json   JSONB,
	confidence    REAL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS extraction_jobs_started_at_idx ON extraction_jobs (started_at);
`

type postgresJobs struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (JobRepository, error) {
	logger.Info("connecting to postgres job store")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "ocr-service"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Error("failed to apply job store schema", "error", err)
		return nil, err
	}

	logger.Info("connected to postgres job store")
	return &postgresJobs{pool: pool, log: logger}, nil
}

func (r *postgresJobs) Insert(ctx context.Context, job *entity.ExtractionJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO extraction_jobs (id, image_url, callback_url, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.ImageURL, job.CallbackURL, string(job.Status), job.StartedAt)
	if err != nil {
		r.log.Error("job insert failed", "job_id", job.ID, "error", err)
		return common.WrapError(err, "insert job")
	}
	r.log.Info("job inserted", "job_id", job.ID, "image_url", job.ImageURL)
	return nil
}

func (r *postgresJobs) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, image_url, callback_url, status, started_at, finished_at,
		       ocr_text, result_json, confidence, error_message
		FROM extraction_jobs WHERE id = $1`, id)

	job, err := scanPostgresJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("job lookup failed", "job_id", id, "error", err)
		return nil, common.WrapError(err, "get job")
	}
	return job, nil
}

func (r *postgresJobs) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.ExtractionJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, image_url, callback_url, status, started_at, finished_at,
		       ocr_text, result_json, confidence, error_message
		FROM extraction_jobs
		WHERE started_at >= $1 AND started_at < $2
		ORDER BY started_at`, from, to)
	if err != nil {
		return nil, common.WrapError(err, "list jobs")
	}
	defer rows.Close()

	var jobs []*entity.ExtractionJob
	for rows.Next() {
		job, err := scanPostgresJob(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *postgresJobs) MarkRunning(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extraction_jobs SET status = $2 WHERE id = $1`,
		id, string(constants.JobStatusRunning))
	if err != nil {
		r.log.Error("job mark running failed", "job_id", id, "error", err)
		return common.WrapError(err, "mark running")
	}
	return nil
}

func (r *postgresJobs) FinishSuccess(ctx context.Context, id uuid.UUID, ocrText string, result json.RawMessage, confidence float32) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE extraction_jobs
		SET status = $2, finished_at = $3, ocr_text = $4, result_json = $5, confidence = $6
		WHERE id = $1`,
		id, string(constants.JobStatusDone), time.Now(), ocrText, result, confidence)
	if err != nil {
		r.log.Error("job finish(DONE) failed", "job_id", id, "error", err)
		return common.WrapError(err, "finish job")
	}
	r.log.Info("job finished", "job_id", id, "status", constants.JobStatusDone)
	return nil
}

func (r *postgresJobs) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE extraction_jobs
		SET status = $2, finished_at = $3, error_message = $4
		WHERE id = $1`,
		id, string(constants.JobStatusFailed), time.Now(), message)
	if err != nil {
		r.log.Error("job finish(FAILED) failed", "job_id", id, "error", err)
		return common.WrapError(err, "finish job")
	}
	r.log.Warn("job failed", "job_id", id, "error", message)
	return nil
}

func (r *postgresJobs) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresJobs) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresJob(row pgx.Row) (*entity.ExtractionJob, error) {
	var (
		job    entity.ExtractionJob
		status string
		result []byte
	)
	err := row.Scan(&job.ID, &job.ImageURL, &job.CallbackURL, &status,
		&job.StartedAt, &job.FinishedAt, &job.OCRText, &result,
		&job.Confidence, &job.ErrorMessage)
	if err != nil {
		return nil, err
	}
	job.Status = constants.JobStatus(status)
	job.ResultJSON = result
	return &job, nil
}
