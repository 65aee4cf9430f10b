package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	reCurrency  = regexp.MustCompile(`€|\beur\b|\beuros?\b`)
	reAmountish = regexp.MustCompile(`\b\d+[,.]\d{2}\b`)
	reDocMarker = regexp.MustCompile(`\b(factura|albar[aá]n|total|cif|nif|lote)\b`)
)

// HeuristicConfidence scores the decoded text by how much it looks like a
// Spanish invoice or delivery note: dates, euro amounts, document markers
// and enough content each add a fixed boost on a low base.
func HeuristicConfidence(txt string) float32 {
	lower := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(lower) {
		score += 0.2
	}
	if reCurrency.MatchString(lower) {
		score += 0.15
	}
	if reAmountish.MatchString(lower) {
		score += 0.15
	}
	if reDocMarker.MatchString(lower) {
		score += 0.15
	}
	if len(txt) > 120 { // enough content
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
