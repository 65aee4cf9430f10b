// Package export produces XLSX workbooks of processed extraction jobs for
// back-office review.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sistema-stock/ocr-service/constants"
	"github.com/sistema-stock/ocr-service/internal/entity"
	"github.com/sistema-stock/ocr-service/internal/repository"
)

// Service is a tiny façade over the job store that renders XLSX bytes.
type Service struct {
	jobs   repository.JobRepository
	logger *slog.Logger
}

func NewService(jobs repository.JobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook of jobs started in the given date
// window, one row per job with its extracted document summary.
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> the last 30 days.
func (s *Service) ExportJobsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	fromDate, toDate := normalizeWindow(from, to)
	jobs, err := s.jobs.ListBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extracciones"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Fecha",
		"Estado",
		"Proveedor",
		"Tipo",
		"Número",
		"Total",
		"Productos",
		"Confianza",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, job := range jobs {
		summary := summarize(job)

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, job.StartedAt.Format("2006-01-02"))
		write(2, string(job.Status))
		write(3, summary.supplier)
		write(4, summary.docType)
		write(5, summary.docNumber)
		write(6, summary.total)
		write(7, summary.products)
		if job.Confidence != nil {
			write(8, fmt.Sprintf("%.2f", *job.Confidence))
		}
		if job.ErrorMessage != nil {
			write(9, clip(*job.ErrorMessage, 140))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // fecha
	_ = f.SetColWidth(sheet, "B", "B", 10) // estado
	_ = f.SetColWidth(sheet, "C", "C", 32) // proveedor
	_ = f.SetColWidth(sheet, "D", "E", 16) // tipo/número
	_ = f.SetColWidth(sheet, "F", "H", 12) // total/productos/confianza
	_ = f.SetColWidth(sheet, "I", "I", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"from", fromDate.Format("2006-01-02"),
		"to", toDate.Format("2006-01-02"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type jobSummary struct {
	supplier  string
	docType   string
	docNumber string
	total     string
	products  int
}

// summarize decodes the stored result JSON; failed jobs and undecodable
// payloads yield an empty summary, never an error.
func summarize(job *entity.ExtractionJob) jobSummary {
	var sum jobSummary
	if job.Status != constants.JobStatusDone || len(job.ResultJSON) == 0 {
		return sum
	}

	var res entity.ExtractResponse
	if err := json.Unmarshal(job.ResultJSON, &res); err != nil {
		return sum
	}

	if res.Supplier != nil {
		sum.supplier = res.Supplier.Name
	}
	if res.Document != nil {
		sum.docType = res.Document.Type
		if res.Document.Number != nil {
			sum.docNumber = *res.Document.Number
		}
		if res.Document.Total != nil {
			sum.total = fmt.Sprintf("%.2f", *res.Document.Total)
		}
	}
	sum.products = len(res.Products)
	return sum
}

func normalizeWindow(from, to *time.Time) (time.Time, time.Time) {
	today := time.Now().UTC()
	endOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	var fromDate time.Time
	if from != nil {
		fromDate = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		fromDate = endOfToday.AddDate(0, 0, -31)
	}

	toDate := endOfToday
	if to != nil {
		// inclusive day -> exclusive upper bound
		toDate = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	return fromDate, toDate
}

func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n-1], "") + "…"
}
