package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sistema-stock/ocr-service/constants"
)

// ExtractionJob represents one image-to-structured-data extraction for data
// transfer between layers.
type ExtractionJob struct {
	ID           uuid.UUID           `json:"id"`
	ImageURL     string              `json:"image_url"`
	CallbackURL  *string             `json:"callback_url,omitempty"`
	Status       constants.JobStatus `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	OCRText      *string             `json:"ocr_text,omitempty"`
	ResultJSON   json.RawMessage     `json:"result_json,omitempty"`
	Confidence   *float32            `json:"confidence,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}
