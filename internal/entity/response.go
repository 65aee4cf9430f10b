package entity

import (
	"github.com/sistema-stock/ocr-service/internal/extract"
)

// ExtractRequest is the body of an asynchronous extraction submission.
type ExtractRequest struct {
	ImageURL     string  `json:"image_url" binding:"required,url"`
	CallbackURL  *string `json:"callback_url,omitempty" binding:"omitempty,url"`
	ProcessingID *string `json:"processing_id,omitempty" binding:"omitempty,uuid"`
}

// TextRequest is the body of a synchronous text-only extraction.
type TextRequest struct {
	Text string `json:"texto" binding:"required"`
}

// ExtractResponse is the wire result of one extraction, returned from the
// synchronous endpoints and POSTed to the callback URL for async jobs. Field
// names are the Spanish contract consumed by the stock system.
type ExtractResponse struct {
	Success       bool              `json:"success"`
	ProcessingID  string            `json:"processing_id"`
	Supplier      *extract.Supplier `json:"proveedor"`
	Document      *extract.Document `json:"documento"`
	Products      []extract.Product `json:"productos"`
	FullText      string            `json:"texto_completo"`
	Confidence    float32           `json:"confianza_general"`
	ProcessingSec float64           `json:"tiempo_procesamiento"`
	Error         *string           `json:"error,omitempty"`
}
