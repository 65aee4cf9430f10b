// runextract runs the extraction heuristics over already-recognized text,
// printing the structured result as JSON. It reads the text from the file
// given as the first argument, or from stdin when no argument is given.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sistema-stock/ocr-service/internal/extract"
	"github.com/sistema-stock/ocr-service/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pretty := flag.Bool("pretty", false, "indent the JSON output")
	flag.Parse()

	var (
		raw []byte
		err error
	)
	switch flag.NArg() {
	case 0:
		raw, err = io.ReadAll(os.Stdin)
	case 1:
		raw, err = os.ReadFile(flag.Arg(0))
	default:
		logger.Error("usage", "cmd", "runextract [-pretty] [file]")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	text := ocr.Normalize(string(raw))

	start := time.Now()
	res := extract.Extract(text)
	dur := time.Since(start)

	if err := extract.ValidateResult(res); err != nil {
		logger.Warn("result failed schema validation", "error", err)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(res, "", "  ")
	} else {
		out, err = json.Marshal(res)
	}
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	if _, err := os.Stdout.Write(append(out, '\n')); err != nil {
		logger.Error("write result", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"products", len(res.Products),
		"confidence", ocr.HeuristicConfidence(text),
		"duration_ms", dur.Milliseconds(),
	)
}
