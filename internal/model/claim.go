package model

// Claim represents a checkable factual assertion extracted upstream.
// A Claim is immutable once created; re-extraction produces a new version
// rather than mutating an existing one.
type Claim struct {
	ID       string    `json:"id"`                 // Stable claim identifier
	Text     string    `json:"text"`               // Normalized claim text
	Type     ClaimType `json:"type"`               // Nature of the assertion
	Entities []string  `json:"entities,omitempty"` // Named entities mentioned by the claim
	Version  int       `json:"version"`            // Extraction version (1-based)
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeFactual      ClaimType = "factual"      // Plain factual assertion
	ClaimTypeQuantitative ClaimType = "quantitative" // Assertion about amounts, counts, rates
	ClaimTypeCausal       ClaimType = "causal"       // Assertion that one thing caused another
)

// ParseClaimType converts a string to a ClaimType, defaulting to factual
func ParseClaimType(s string) ClaimType {
	switch ClaimType(s) {
	case ClaimTypeQuantitative:
		return ClaimTypeQuantitative
	case ClaimTypeCausal:
		return ClaimTypeCausal
	default:
		return ClaimTypeFactual
	}
}

// NextVersion returns a copy of the claim with new text and a bumped version.
// The receiver is left untouched.
func (c Claim) NextVersion(text string) Claim {
	next := c
	next.Text = text
	next.Version = c.Version + 1
	next.Entities = append([]string(nil), c.Entities...)
	return next
}
