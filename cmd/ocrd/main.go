// ocrd is the OCR extraction service: an HTTP API that turns images of
// Spanish invoices and delivery notes into structured supplier, document
// and product data.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sistema-stock/ocr-service/internal/common"
	"github.com/sistema-stock/ocr-service/internal/export"
	"github.com/sistema-stock/ocr-service/internal/ocr"
	"github.com/sistema-stock/ocr-service/internal/pipeline"
	"github.com/sistema-stock/ocr-service/internal/repository"
	"github.com/sistema-stock/ocr-service/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open job store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := jobs.Close(); cerr != nil {
			logger.Error("close job store", "error", cerr)
		}
	}()

	if err := repository.HealthCheck(ctx, jobs, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("job store health failed", "error", err)
		os.Exit(1)
	}

	engine := ocr.NewEngine(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		Language:            cfg.OCR.Language,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: cfg.OCR.TSVConfidence,
	}, logger)
	if err := engine.Verify(ctx); err != nil {
		logger.Error("ocr engine verification failed", "error", err)
		os.Exit(1)
	}

	fetcher := pipeline.NewHTTPFetcher(cfg.OCR.ArtifactCacheDir, cfg.OCR.MaxImageSizeMB, cfg.OCR.FetchTimeout, logger)
	preparer := pipeline.NewImagingPreparer(cfg.OCR.ArtifactCacheDir, logger)
	proc := pipeline.NewProcessor(logger, fetcher, preparer, engine, jobs)

	notifier := pipeline.NewNotifier(cfg.Callback.Secret, cfg.Callback.Timeout, logger)
	queue := pipeline.NewQueue(proc, notifier, logger,
		pipeline.WithWorkers(cfg.Callback.Workers),
		pipeline.WithQueueSize(cfg.Callback.QueueSize),
	)

	exportSvc := export.NewService(jobs, logger)
	srv := server.New(cfg.Server, logger, proc, queue, jobs, exportSvc)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	grpcSrv := server.NewGRPCHealthServer()
	go func() {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("grpc listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
			stop()
			return
		}
		logger.Info("grpc health serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcSrv.GracefulStop()
	queue.Shutdown(shutdownCtx)
	if err := engine.Close(); err != nil {
		logger.Error("engine close failed", "error", err)
	}

	logger.Info("shutdown complete")
}
