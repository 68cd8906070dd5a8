package model

import "time"

// Stance is the position one piece of evidence takes toward a claim
type Stance string

const (
	StanceSupports Stance = "supports"
	StanceRefutes  Stance = "refutes"
	StanceNeutral  Stance = "neutral"
)

// RawHit is one unprocessed result returned by a backend connector.
// Hits with a missing snippet or source id are discarded during dispatch.
type RawHit struct {
	SourceID    string     `json:"source_id"`              // Canonical domain or dataset id
	URL         string     `json:"url,omitempty"`          // Location of the evidence, if any
	Snippet     string     `json:"snippet"`                // Text bearing on the claim
	Stance      Stance     `json:"stance,omitempty"`       // Optional; inferred when absent
	Category    string     `json:"category,omitempty"`     // Source category hint from the backend
	PublishedAt *time.Time `json:"published_at,omitempty"` // Publication time, if known
}

// EvidenceItem is one retrieved piece of evidence bearing on a claim.
// Items are immutable once a verification run publishes them.
type EvidenceItem struct {
	ID             string     `json:"id"`        // Derived from the dedup key
	ClaimID        string     `json:"claim_id"`  // Claim this evidence bears on
	SourceID       string     `json:"source_id"` // Where the evidence came from
	Snippet        string     `json:"snippet"`   // Evidence text
	CanonicalURL   string     `json:"canonical_url,omitempty"`
	ContentHash    string     `json:"content_hash"`                // Dedup key when no URL is present
	SourceCategory string     `json:"source_category,omitempty"`   // Category hint for registry misses
	Stance         Stance     `json:"stance"`                      // supports, refutes, neutral
	Relevance      float64    `json:"relevance"`                   // Semantic closeness to the claim, [0,1]
	Credibility    float64    `json:"credibility"`                 // Source trust score, [0,1]
	Corroboration  int        `json:"corroboration"`               // Duplicate hits folded into this item
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	RetrievedAt    time.Time  `json:"retrieved_at"`
}

// Weight is the item's contribution to the aggregate verdict
func (e EvidenceItem) Weight() float64 {
	return e.Credibility * e.Relevance
}

// SignedWeight applies the stance sign: supports positive, refutes negative,
// neutral zero.
func (e EvidenceItem) SignedWeight() float64 {
	switch e.Stance {
	case StanceSupports:
		return e.Weight()
	case StanceRefutes:
		return -e.Weight()
	default:
		return 0
	}
}
