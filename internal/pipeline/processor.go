// Package pipeline coordinates image fetch, preparation, recognition and
// structured extraction for one job, and delivers results to callbacks.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
	"github.com/sistema-stock/ocr-service/internal/extract"
	"github.com/sistema-stock/ocr-service/internal/ocr"
	"github.com/sistema-stock/ocr-service/internal/repository"
)

// Recognizer abstracts the OCR engine so tests can stub it.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (ocr.Result, error)
}

// Processor runs the full image-to-structured-data chain for one job.
type Processor struct {
	logger   *slog.Logger
	fetcher  Fetcher
	preparer Preparer
	engine   Recognizer
	jobs     repository.JobRepository
}

func NewProcessor(logger *slog.Logger, fetcher Fetcher, preparer Preparer, engine Recognizer, jobs repository.JobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		fetcher:  fetcher,
		preparer: preparer,
		engine:   engine,
		jobs:     jobs,
	}
}

// ProcessJob advances the stored job through fetch, prepare, recognize and
// extract, persists the outcome, and returns the wire response. Failures
// are reported inside the response (Success=false), never as a panic or a
// half-written job row.
func (p *Processor) ProcessJob(ctx context.Context, job *entity.ExtractionJob) entity.ExtractResponse {
	start := time.Now()
	id := job.ID.String()
	ctx = common.WithProcessingID(ctx, id)
	p.logger.Info("processing started", "job_id", id, "image_url", job.ImageURL)

	if err := p.jobs.MarkRunning(ctx, job.ID); err != nil {
		p.logger.Error("mark running failed", "job_id", id, "error", err)
	}

	text, conf, err := p.recognizeImage(ctx, job.ImageURL)
	if err != nil {
		p.logger.Error("processing failed", "job_id", id, "error", err)
		_ = p.jobs.FinishFailure(ctx, job.ID, err.Error())
		return failureResponse(id, err, start)
	}

	resp := p.BuildResponse(id, text, conf, start)

	result, err := json.Marshal(resp)
	if err != nil {
		p.logger.Error("result marshal failed", "job_id", id, "error", err)
		_ = p.jobs.FinishFailure(ctx, job.ID, err.Error())
		return failureResponse(id, err, start)
	}
	if err := p.jobs.FinishSuccess(ctx, job.ID, text, result, conf); err != nil {
		p.logger.Error("persist result failed", "job_id", id, "error", err)
	}

	p.logger.Info("processing finished",
		"job_id", id,
		"products", len(resp.Products),
		"confidence", conf,
		"duration_s", resp.ProcessingSec,
	)
	return resp
}

// recognizeImage downloads and prepares the image, then OCRs it. An image
// that yields no text at all is a hard failure.
func (p *Processor) recognizeImage(ctx context.Context, url string) (string, float32, error) {
	local, cleanup, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	prepared, cleanupPrep, err := p.preparer.Prepare(ctx, local)
	if err != nil {
		return "", 0, err
	}
	defer cleanupPrep()

	res, err := p.engine.Recognize(ctx, prepared)
	if err != nil {
		return "", 0, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", 0, common.NewAppError("EMPTY_TEXT", "no text recognized in image", common.ErrEmptyText)
	}
	return res.Text, res.Confidence, nil
}

// BuildResponse runs the extractors over recognized text and assembles the
// wire response. The OCR confidence is passed through as the overall score;
// the extractors carry their own per-record confidences.
func (p *Processor) BuildResponse(processingID, text string, ocrConfidence float32, start time.Time) entity.ExtractResponse {
	res := extract.Extract(text)

	// Contract drift is logged, not fatal: a result that trips the schema
	// is still more useful to the caller than no result.
	if err := extract.ValidateResult(res); err != nil {
		p.logger.Warn("result failed schema validation", "processing_id", processingID, "error", err)
	}

	doc := res.Document
	return entity.ExtractResponse{
		Success:       true,
		ProcessingID:  processingID,
		Supplier:      res.Supplier,
		Document:      &doc,
		Products:      res.Products,
		FullText:      text,
		Confidence:    ocrConfidence,
		ProcessingSec: time.Since(start).Seconds(),
	}
}

func failureResponse(processingID string, err error, start time.Time) entity.ExtractResponse {
	msg := err.Error()
	return entity.ExtractResponse{
		Success:       false,
		ProcessingID:  processingID,
		Products:      []extract.Product{},
		Confidence:    0,
		ProcessingSec: time.Since(start).Seconds(),
		Error:         &msg,
	}
}
