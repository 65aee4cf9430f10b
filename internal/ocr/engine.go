// Package ocr turns prepared document images into plain text by driving the
// tesseract binary, and scores how trustworthy that text looks.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // tesseract language pack, default "spa"
	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
}

// Result is the recognized text plus its confidence estimate.
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Engine runs tesseract over image files.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	return &Engine{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Verify checks that the configured tesseract binary is runnable. Called once
// at startup so a missing binary fails fast instead of on the first job.
func (e *Engine) Verify(ctx context.Context) error {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
	if err != nil {
		return common.WrapError(err, fmt.Sprintf("tesseract binary %q not runnable", e.cfg.Tesseract))
	}
	version := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	e.logger.Info("ocr engine ready", "tesseract", version, "language", e.cfg.Language)
	return nil
}

// Close tears the engine down. The exec-per-call wrapper holds no
// long-lived resources, so this only marks the engine as retired in the
// logs; it pairs with Verify in the service lifecycle.
func (e *Engine) Close() error {
	e.logger.Info("ocr engine closed")
	return nil
}

// Recognize OCRs the image at path and returns normalized text with a
// confidence in [0,1]. When TSV confidence is enabled the tesseract mean
// word confidence is blended with a text-shape heuristic, weighted toward
// the engine's own estimate.
func (e *Engine) Recognize(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	txt, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return Result{Language: e.cfg.Language, Warnings: warns}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if e.cfg.EnableTSVConfidence {
		c, w, err2 := e.tesseractTSVConfidence(ctx, path)
		warns = append(warns, w...)
		if err2 != nil {
			warns = append(warns, err2.Error())
		} else {
			ocrConf = c
		}
	}
	heurConf := HeuristicConfidence(txt)

	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return Result{
		Text:       txt,
		Language:   e.cfg.Language,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: conf,
	}, nil
}

func (e *Engine) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := e.baseArgs(path)

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// drop horizontal-rule line noise before normalization
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean
// word confidence in 0..1.
func (e *Engine) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := append(e.baseArgs(path), "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}

	// conf is column 11 of 12 (text is last); -1 marks non-word rows
	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || ln == "" {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return float32(sum / n / 100.0), nil, nil
}

func (e *Engine) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
