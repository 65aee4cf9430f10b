package extract

import "regexp"

// Pattern library shared by the extractors. Compiled once at init and
// read-only afterwards, so the extractors stay safe to call concurrently.
var (
	// Spanish CIF/NIF family: leading letter B-Z plus 7-8 digits, optional
	// hyphen and check character.
	reTaxID = regexp.MustCompile(`[B-Z]\d{8}|[B-Z]-?\d{7}-?[A-Z0-9]`)

	// Email is matched against the original-case text; the result is
	// lower-cased afterwards.
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Spanish mobile/landline: nine digits, optional +34/0034 prefix.
	rePhone = regexp.MustCompile(`(\+34|0034)?\s*[6-9]\d{8}|\d{9}`)
)

// Address lines contain one of these keywords plus at least one digit.
var addressKeywords = []string{"CALLE", "C/", "AV", "AVENIDA", "PLAZA", "POL", "POLIGONO"}

// Lines containing these markers never qualify as a supplier name.
var supplierNameStopwords = []string{"FACTURA", "ALBARÁN", "TOTAL"}

// Document number strategies, tried in listed order; the order is the
// priority, first strategy with any match across all lines wins.
var reDocNumber = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:FACTURA|ALBARAN|ALBARÁN|N[ºª°]?)\s*:?\s*([A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)([A-Z]{2,4}-?\d{4,8})`),
}

// Date strategies, tried in listed order. yearFirst marks the YYYY-M-D form.
var reDocDate = []struct {
	re        *regexp.Regexp
	yearFirst bool
}{
	{regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`), false},
	{regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`), true},
}

// Total strategies: keyword-anchored amounts first, then line-trailing bare
// numbers as fallback.
var reDocTotal = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TOTAL[:\s]*(\d+[,.]?\d*)`),
	regexp.MustCompile(`(?m)(\d+[,.]?\d*)\s*€?\s*$`),
}

// Quantity patterns: number plus unit keyword, then bare number as last
// resort. The unit group defaults to "ud" when absent.
var (
	reQuantityUnit = regexp.MustCompile(`(?i)(\d+[,.]?\d*)\s*(kg|g|l|ml|ud|pz|caja|bolsa)`)
	reBareNumber   = regexp.MustCompile(`(\d+[,.]?\d*)`)
	rePrice        = regexp.MustCompile(`(\d+[,.]?\d*)\s*€?`)
)

// Optional per-line product annotations.
var (
	reLot    = regexp.MustCompile(`(?i)LOTE[.:\s]*([A-Z0-9\-]+)`)
	reExpiry = regexp.MustCompile(`(?i)CAD(?:UCIDAD)?[.:\s]*(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
)

// Fixed vocabulary of common grocery, meat and produce terms. A line
// containing one of these is a product candidate even without a quantity.
var foodKeywords = []string{
	"tomate", "lechuga", "cebolla", "patata", "zanahoria", "calabacin", "pimiento",
	"pollo", "ternera", "cerdo", "salmon", "merluza", "dorada",
	"queso", "yogur", "leche", "nata", "mantequilla", "mozzarella",
	"pan", "pasta", "arroz", "harina", "aceite", "vinagre",
	"manzana", "naranja", "platano", "fresa", "melon",
}
