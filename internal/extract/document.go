package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractDocument classifies the document and extracts number, date and
// total. A Document is always returned; with no evidence it is a bare
// factura with all optional fields nil.
//
// Number, date and total each try an ordered list of strategies. The order
// is deliberate and load-bearing: the first strategy producing a usable
// match wins, and reordering the lists changes output.
func ExtractDocument(text string) Document {
	upper := strings.ToUpper(text)
	upperLines := strings.Split(upper, "\n")

	doc := Document{Type: DocTypeFactura}
	for _, line := range upperLines {
		if strings.Contains(line, "ALBARÁN") || strings.Contains(line, "ALBARAN") {
			doc.Type = DocTypeAlbaran
			break
		}
	}

	doc.Number = findDocNumber(upperLines)
	doc.Date = findDocDate(text)
	doc.Total = findDocTotal(text)
	return doc
}

// findDocNumber returns the capture of the first pattern with any match
// across all lines; within a pattern the first matching line is used.
func findDocNumber(upperLines []string) *string {
	for _, re := range reDocNumber {
		for _, line := range upperLines {
			if m := re.FindStringSubmatch(line); m != nil {
				n := m[1]
				return &n
			}
		}
	}
	return nil
}

// findDocDate normalizes the first parsable date match to YYYY-MM-DD. A
// match with an unparsable component is skipped and matching continues.
func findDocDate(text string) *string {
	for _, strat := range reDocDate {
		for _, m := range strat.re.FindAllStringSubmatch(text, -1) {
			var year, month, day string
			if strat.yearFirst {
				year, month, day = m[1], m[2], m[3]
			} else {
				year, month, day = m[3], m[2], m[1]
			}
			iso, err := isoDate(year, month, day)
			if err != nil {
				continue
			}
			return &iso
		}
	}
	return nil
}

func isoDate(year, month, day string) (string, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", err
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return "", err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), nil
}

// findDocTotal collects the numeric matches of each strategy in turn and
// keeps the maximum amount greater than 10. The threshold excludes per-unit
// prices and quantities; taking the maximum assumes the document total is
// the largest currency figure present. Crude, but kept on purpose: the
// behavior is part of the caller contract.
func findDocTotal(text string) *float64 {
	for _, re := range reDocTotal {
		var amounts []float64
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := parseAmount(m[1])
			if err != nil {
				continue
			}
			if v > 10 {
				amounts = append(amounts, v)
			}
		}
		if len(amounts) > 0 {
			max := amounts[0]
			for _, v := range amounts[1:] {
				if v > max {
					max = v
				}
			}
			return &max
		}
	}
	return nil
}
