// Package extract turns noisy OCR text recovered from photographed delivery
// notes and invoices into structured business records. Every extractor is a
// pure function of the input text; absence of a signal yields nil/absent
// fields, never an error.
package extract

// Document types, stored and serialized with these exact strings.
const (
	DocTypeFactura = "factura"
	DocTypeAlbaran = "albarán"
)

// Supplier is the issuing business entity detected in the document header.
// JSON field names follow the existing caller contract.
type Supplier struct {
	Name       string  `json:"nombre"`
	Address    *string `json:"direccion"`
	Phone      *string `json:"telefono"`
	Email      *string `json:"email"`
	TaxID      *string `json:"cif"`
	Confidence float32 `json:"confianza"`
}

// Document is the invoice or delivery note as a whole, distinct from its
// line items. A type is always assigned, defaulting to factura.
type Document struct {
	Type   string   `json:"tipo"`
	Number *string  `json:"numero"`
	Date   *string  `json:"fecha"`
	Total  *float64 `json:"total"`
}

// Product is one purchased item row with quantity, unit and price.
type Product struct {
	Name       string   `json:"nombre"`
	Quantity   float64  `json:"cantidad"`
	Unit       string   `json:"unidad"`
	UnitPrice  *float64 `json:"precio"`
	LineTotal  *float64 `json:"precio_total"`
	Expiry     *string  `json:"caducidad"`
	Lot        *string  `json:"lote"`
	Confidence float32  `json:"confianza"`
}

// Result bundles the three independent extractions over one text blob.
type Result struct {
	Supplier *Supplier `json:"proveedor"`
	Document Document  `json:"documento"`
	Products []Product `json:"productos"`
}
