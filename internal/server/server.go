// Package server exposes the extraction pipeline over HTTP (gin) plus a
// bare gRPC health endpoint for infrastructure probes.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/entity"
	"github.com/sistema-stock/ocr-service/internal/export"
	"github.com/sistema-stock/ocr-service/internal/ocr"
	"github.com/sistema-stock/ocr-service/internal/pipeline"
	"github.com/sistema-stock/ocr-service/internal/repository"
)

const (
	serviceName    = "OCR Sistema Stock"
	serviceVersion = "1.0.0"
)

// Server wires the HTTP handlers to the pipeline and stores.
type Server struct {
	cfg    common.ServerConfig
	logger *slog.Logger
	proc   *pipeline.Processor
	queue  *pipeline.Queue
	jobs   repository.JobRepository
	export *export.Service
}

func New(cfg common.ServerConfig, logger *slog.Logger, proc *pipeline.Processor, queue *pipeline.Queue, jobs repository.JobRepository, exportSvc *export.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		proc:   proc,
		queue:  queue,
		jobs:   jobs,
		export: exportSvc,
	}
}

// Router builds the gin engine. Extraction and job endpoints sit behind
// basic auth; the health endpoints stay open for probes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())

	r.GET("/", s.root)
	r.GET("/health", s.health)

	authorized := r.Group("/", gin.BasicAuth(gin.Accounts{
		s.cfg.BasicAuthUser: s.cfg.BasicAuthPass,
	}))
	authorized.POST("/extract", s.extract)
	authorized.POST("/extract/text", s.extractText)
	authorized.GET("/jobs/:id", s.getJob)
	authorized.GET("/jobs/export", s.exportJobs)

	return r
}

// requestID stamps each request with an ID so pipeline logs can be tied
// back to the HTTP call that started them. An incoming X-Request-ID is
// honored; otherwise one is minted.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":    serviceName,
		"version":    serviceVersion,
		"status":     "running",
		"ocr_engine": "tesseract",
	})
}

func (s *Server) health(c *gin.Context) {
	dbOK := s.jobs.Ping(c.Request.Context()) == nil
	status := http.StatusOK
	state := "healthy"
	if !dbOK {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"ocr_ready": true,
		"db_ready":  dbOK,
	})
}

// extract accepts an image-URL job. With a callback URL the job is queued
// and acknowledged immediately; without one it is processed in-request and
// the full result returned.
func (s *Server) extract(c *gin.Context) {
	var req entity.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	id := uuid.New()
	if req.ProcessingID != nil {
		parsed, err := uuid.Parse(*req.ProcessingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "processing_id must be a UUID"})
			return
		}
		id = parsed
	}

	job := &entity.ExtractionJob{
		ID:          id,
		ImageURL:    req.ImageURL,
		CallbackURL: req.CallbackURL,
		Status:      constants.JobStatusQueued,
		StartedAt:   time.Now().UTC(),
	}
	if err := s.jobs.Insert(c.Request.Context(), job); err != nil {
		s.logger.Error("job insert failed",
			"job_id", id, "request_id", common.RequestIDFromContext(c.Request.Context()), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not accept job"})
		return
	}

	if req.CallbackURL != nil {
		if err := s.queue.Enqueue(c.Request.Context(), job); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"success":       true,
			"processing_id": id.String(),
			"status":        constants.JobStatusQueued,
		})
		return
	}

	resp := s.proc.ProcessJob(c.Request.Context(), job)
	c.JSON(statusFor(resp), resp)
}

// extractText runs the extractors over caller-provided text, with no OCR
// and no persistence.
func (s *Server) extractText(c *gin.Context) {
	var req entity.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := s.proc.BuildResponse(uuid.NewString(), req.Text, ocr.HeuristicConfidence(req.Text), time.Now())
	resp.FullText = req.Text
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "job id must be a UUID"})
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "job not found"})
		return
	}
	if err != nil {
		s.logger.Error("job lookup failed", "job_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "job lookup failed"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// exportJobs streams an XLSX of jobs in the requested date window.
func (s *Server) exportJobs(c *gin.Context) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	data, err := s.export.ExportJobsXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="extracciones.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// statusFor maps a synchronous pipeline outcome to an HTTP status. The
// processor flattens errors into the response body, so the unprocessable
// case (image with no recognizable text) is matched on its message.
func statusFor(resp entity.ExtractResponse) int {
	if !resp.Success && resp.Error != nil && strings.Contains(*resp.Error, "no text recognized") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errors.New("dates must be YYYY-MM-DD")
	}
	return &t, nil
}
