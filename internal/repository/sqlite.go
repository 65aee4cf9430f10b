package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id            TEXT PRIMARY KEY,
	image_url     TEXT NOT NULL,
	callback_url  TEXT,
	status        TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT,
	ocr_text      TEXT,
	result_json   TEXT,
	confidence    REAL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS extraction_jobs_started_at_idx ON extraction_jobs (started_at);
`

// Timestamps are stored as RFC 3339 text so lexical order is time order and
// the BETWEEN queries stay index friendly.
const sqliteTimeFormat = time.RFC3339Nano

type sqliteJobs struct {
	db  *sql.DB
	log *slog.Logger
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (JobRepository, error) {
	logger.Info("opening sqlite job store", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	// modernc sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under concurrent workers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		logger.Error("failed to apply job store schema", "error", err)
		return nil, common.WrapError(err, "apply schema")
	}
	return &sqliteJobs{db: db, log: logger}, nil
}

func (r *sqliteJobs) Insert(ctx context.Context, job *entity.ExtractionJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO extraction_jobs (id, image_url, callback_url, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID.String(), job.ImageURL, job.CallbackURL, string(job.Status),
		job.StartedAt.UTC().Format(sqliteTimeFormat))
	if err != nil {
		r.log.Error("job insert failed", "job_id", job.ID, "error", err)
		return common.WrapError(err, "insert job")
	}
	r.log.Info("job inserted", "job_id", job.ID, "image_url", job.ImageURL)
	return nil
}

func (r *sqliteJobs) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, image_url, callback_url, status, started_at, finished_at,
		       ocr_text, result_json, confidence, error_message
		FROM extraction_jobs WHERE id = ?`, id.String())

	job, err := scanSQLiteJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("job lookup failed", "job_id", id, "error", err)
		return nil, common.WrapError(err, "get job")
	}
	return job, nil
}

func (r *sqliteJobs) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.ExtractionJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, image_url, callback_url, status, started_at, finished_at,
		       ocr_text, result_json, confidence, error_message
		FROM extraction_jobs
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at`,
		from.UTC().Format(sqliteTimeFormat), to.UTC().Format(sqliteTimeFormat))
	if err != nil {
		return nil, common.WrapError(err, "list jobs")
	}
	defer rows.Close()

	var jobs []*entity.ExtractionJob
	for rows.Next() {
		job, err := scanSQLiteJob(rows.Scan)
		if err != nil {
			return nil, common.WrapError(err, "scan job")
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *sqliteJobs) MarkRunning(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extraction_jobs SET status = ? WHERE id = ?`,
		string(constants.JobStatusRunning), id.String())
	if err != nil {
		r.log.Error("job mark running failed", "job_id", id, "error", err)
		return common.WrapError(err, "mark running")
	}
	return nil
}

func (r *sqliteJobs) FinishSuccess(ctx context.Context, id uuid.UUID, ocrText string, result json.RawMessage, confidence float32) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET status = ?, finished_at = ?, ocr_text = ?, result_json = ?, confidence = ?
		WHERE id = ?`,
		string(constants.JobStatusDone), time.Now().UTC().Format(sqliteTimeFormat),
		ocrText, string(result), confidence, id.String())
	if err != nil {
		r.log.Error("job finish(DONE) failed", "job_id", id, "error", err)
		return common.WrapError(err, "finish job")
	}
	r.log.Info("job finished", "job_id", id, "status", constants.JobStatusDone)
	return nil
}

func (r *sqliteJobs) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET status = ?, finished_at = ?, error_message = ?
		WHERE id = ?`,
		string(constants.JobStatusFailed), time.Now().UTC().Format(sqliteTimeFormat),
		message, id.String())
	if err != nil {
		r.log.Error("job finish(FAILED) failed", "job_id", id, "error", err)
		return common.WrapError(err, "finish job")
	}
	r.log.Warn("job failed", "job_id", id, "error", message)
	return nil
}

func (r *sqliteJobs) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteJobs) Close() error {
	return r.db.Close()
}

func scanSQLiteJob(scan func(dest ...any) error) (*entity.ExtractionJob, error) {
	var (
		job        entity.ExtractionJob
		id, status string
		startedAt  string
		callback   sql.NullString
		finishedAt sql.NullString
		ocrText    sql.NullString
		result     sql.NullString
		confidence sql.NullFloat64
		errMsg     sql.NullString
	)
	err := scan(&id, &job.ImageURL, &callback, &status, &startedAt, &finishedAt,
		&ocrText, &result, &confidence, &errMsg)
	if err != nil {
		return nil, err
	}

	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if job.StartedAt, err = time.Parse(sqliteTimeFormat, startedAt); err != nil {
		return nil, err
	}
	job.Status = constants.JobStatus(status)
	if callback.Valid {
		job.CallbackURL = &callback.String
	}
	if finishedAt.Valid {
		t, err := time.Parse(sqliteTimeFormat, finishedAt.String)
		if err != nil {
			return nil, err
		}
		job.FinishedAt = &t
	}
	if ocrText.Valid {
		job.OCRText = &ocrText.String
	}
	if result.Valid && result.String != "" {
		job.ResultJSON = json.RawMessage(result.String)
	}
	if confidence.Valid {
		c := float32(confidence.Float64)
		job.Confidence = &c
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	return &job, nil
}
