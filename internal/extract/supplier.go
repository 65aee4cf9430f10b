package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractSupplier derives the supplier identity from the document header and
// tax-id/contact patterns. It returns nil unless at least one strong signal
// (name, tax id or email) was found: no evidence yields no record, not an
// empty one.
func ExtractSupplier(text string) *Supplier {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	upperLines := strings.Split(upper, "\n")

	name := findSupplierName(upperLines)

	var taxID, email, phone, address *string

	if m := reTaxID.FindString(upper); m != "" {
		taxID = &m
	}
	// Case matters for the local part, so the email pattern runs against the
	// original-case text; the match is lower-cased.
	if m := reEmail.FindString(text); m != "" {
		lowered := strings.ToLower(m)
		email = &lowered
	}
	if m := strings.TrimSpace(rePhone.FindString(upper)); m != "" {
		phone = &m
	}
	if a := findSupplierAddress(upperLines); a != "" {
		address = &a
	}

	hasName := name != ""
	if !hasName && taxID == nil && email == nil {
		return nil
	}
	if !hasName {
		name = "Proveedor desconocido"
	}

	return &Supplier{
		Name:       name,
		Address:    address,
		Phone:      phone,
		Email:      email,
		TaxID:      taxID,
		Confidence: supplierConfidence(hasName, taxID != nil),
	}
}

// findSupplierName scans the first five lines for the first one longer than
// five characters that does not start with digits and is not a document
// marker line; the match is title-cased.
func findSupplierName(upperLines []string) string {
	limit := len(upperLines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range upperLines[:limit] {
		clean := strings.TrimSpace(line)
		if utf8.RuneCountInString(clean) <= 5 {
			continue
		}
		if leadingDigits(clean) {
			continue
		}
		if containsAny(clean, supplierNameStopwords) {
			continue
		}
		return titleCase(clean)
	}
	return ""
}

// leadingDigits reports whether any of the first three runes is a digit.
func leadingDigits(s string) bool {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
		n++
		if n == 3 {
			break
		}
	}
	return false
}

// findSupplierAddress returns the first line containing an address keyword
// and at least one digit, title-cased.
func findSupplierAddress(upperLines []string) string {
	for _, line := range upperLines {
		if containsAny(line, addressKeywords) && hasDigit(line) {
			return titleCase(strings.TrimSpace(line))
		}
	}
	return ""
}
