package backend

import (
	"strings"

	"github.com/counterfact/veridex/internal/model"
)

// Polarity word lists for hits whose backend supplies no stance. Checked
// refute-first: fact-check snippets routinely restate the claim they
// debunk, so refuting language wins over supporting language.
var (
	refuteMarkers = []string{
		"false", "debunked", "no evidence", "refuted", "misleading",
		"incorrect", "fabricated", "hoax", "denied", "baseless",
		"unsubstantiated", "not true", "disproven",
	}
	supportMarkers = []string{
		"confirmed", "verified", "corroborated", "accurate",
		"substantiated", "consistent with", "documented", "validated",
	}
)

// InferStance derives a stance from snippet polarity wording. Snippets
// with neither polarity are neutral.
func InferStance(snippet string) model.Stance {
	lower := strings.ToLower(snippet)
	for _, marker := range refuteMarkers {
		if strings.Contains(lower, marker) {
			return model.StanceRefutes
		}
	}
	for _, marker := range supportMarkers {
		if strings.Contains(lower, marker) {
			return model.StanceSupports
		}
	}
	return model.StanceNeutral
}
