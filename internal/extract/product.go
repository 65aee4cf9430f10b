package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// maxProducts caps the returned product list.
const maxProducts = 20

// ExtractProducts segments the text into candidate product lines, extracts
// quantity, unit and price per line, scores confidence, deduplicates and
// returns at most maxProducts entries ordered by descending confidence.
func ExtractProducts(text string) []Product {
	lines := strings.Split(text, "\n")
	products := make([]Product, 0, 8)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < 3 {
			continue
		}

		// Lot and expiry annotations are cut out first so their tokens do
		// not bleed into the product name or quantity.
		line, lot := cutLot(line)
		line, expiry := cutExpiry(line)

		lower := strings.ToLower(line)
		hasFood := containsAny(lower, foodKeywords)
		hasQuantity := reQuantityUnit.MatchString(line) || reBareNumber.MatchString(line)
		if !hasFood && !hasQuantity {
			continue
		}

		name := productName(line)
		if utf8.RuneCountInString(name) < 2 {
			continue
		}

		quantity, unit := parseQuantity(line)
		price := findUnitPrice(lines, i)

		products = append(products, Product{
			Name:       name,
			Quantity:   quantity,
			Unit:       unit,
			UnitPrice:  price,
			Expiry:     expiry,
			Lot:        lot,
			Confidence: productConfidence(hasFood, price != nil),
		})
	}

	products = dedupeProducts(products)
	sort.SliceStable(products, func(a, b int) bool {
		return products[a].Confidence > products[b].Confidence
	})
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	return products
}

// productName strips quantity and price substrings from the line; the
// residue, trimmed and title-cased, is the product name.
func productName(line string) string {
	name := reQuantityUnit.ReplaceAllString(line, "")
	name = reBareNumber.ReplaceAllString(name, "")
	name = rePrice.ReplaceAllString(name, "")
	return titleCase(strings.TrimSpace(name))
}

// parseQuantity applies the quantity patterns in order; the first match's
// numeric group becomes the quantity and its unit group (or "ud") the unit.
// Defaults are 1.0 and "ud".
func parseQuantity(line string) (float64, string) {
	for _, re := range []*regexp.Regexp{reQuantityUnit, reBareNumber} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseAmount(m[1])
		if err != nil || v <= 0 {
			continue
		}
		unit := "ud"
		if len(m) > 2 && m[2] != "" {
			unit = strings.ToLower(m[2])
		}
		return v, unit
	}
	return 1.0, "ud"
}

// findUnitPrice scans a one-line window (previous, current, next) and takes
// the minimum numeric token strictly between 0.1 and 1000 from the first
// line that yields one. Totals and quantities tend to be larger or not
// currency-shaped, so the minimum is the most plausible unit price.
func findUnitPrice(lines []string, i int) *float64 {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}
	for j := lo; j <= hi; j++ {
		var best *float64
		for _, m := range rePrice.FindAllStringSubmatch(lines[j], -1) {
			v, err := parseAmount(m[1])
			if err != nil {
				continue
			}
			if v > 0.1 && v < 1000 && (best == nil || v < *best) {
				vv := v
				best = &vv
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// cutLot removes a "LOTE: X" annotation from the line and returns the lot
// code, uppercased.
func cutLot(line string) (string, *string) {
	m := reLot.FindStringSubmatch(line)
	if m == nil {
		return line, nil
	}
	lot := strings.ToUpper(m[1])
	return strings.TrimSpace(reLot.ReplaceAllString(line, "")), &lot
}

// cutExpiry removes a "CAD/CADUCIDAD <date>" annotation and returns the
// expiry normalized to YYYY-MM-DD.
func cutExpiry(line string) (string, *string) {
	m := reExpiry.FindStringSubmatch(line)
	if m == nil {
		return line, nil
	}
	iso, err := isoDate(m[3], m[2], m[1])
	if err != nil {
		return line, nil
	}
	return strings.TrimSpace(reExpiry.ReplaceAllString(line, "")), &iso
}

// dedupeProducts treats two lines as duplicates of one physical item when
// one name is a case-insensitive substring of the other, which is how OCR
// renders the same row twice with different casing or extra words. The
// higher-confidence entry wins, replacing the losing one in place so the
// relative order of first occurrence is preserved.
func dedupeProducts(in []Product) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		duplicate := false
		for j := range out {
			a := strings.ToLower(out[j].Name)
			b := strings.ToLower(p.Name)
			if strings.Contains(a, b) || strings.Contains(b, a) {
				if p.Confidence > out[j].Confidence {
					out[j] = p
				}
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, p)
		}
	}
	return out
}
