package extract

// Confidence values are deterministic heuristic scores, not probabilities:
// a base plus a fixed bonus per matched signal, clamped to a cap. Keeping
// the arithmetic in one place keeps the policy testable in isolation.

type confidence float32

func baseConfidence(v float32) confidence { return confidence(v) }

// bonus adds v when the signal matched, which keeps the score monotonic in
// the number of signals.
func (c confidence) bonus(v float32, matched bool) confidence {
	if matched {
		return c + confidence(v)
	}
	return c
}

// capped clamps the accumulated score to [0, max].
func (c confidence) capped(max float32) float32 {
	v := float32(c)
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	return v
}

// supplierConfidence: 0.8 when both name and tax id were found, 0.6 for any
// weaker combination that still materializes a record.
func supplierConfidence(hasName, hasTaxID bool) float32 {
	if hasName && hasTaxID {
		return baseConfidence(0.8).capped(1.0)
	}
	return baseConfidence(0.6).capped(1.0)
}

// productConfidence: base 0.5, +0.3 for a food keyword, +0.2 for a found
// price, capped at 0.95.
func productConfidence(hasFoodKeyword, hasPrice bool) float32 {
	return baseConfidence(0.5).
		bonus(0.3, hasFoodKeyword).
		bonus(0.2, hasPrice).
		capped(0.95)
}
