package model

import "time"

// VerdictStance is the aggregate outcome of verification
type VerdictStance string

const (
	VerdictSupported    VerdictStance = "supported"
	VerdictRefuted      VerdictStance = "refuted"
	VerdictDisputed     VerdictStance = "disputed"
	VerdictInsufficient VerdictStance = "insufficient_evidence"
)

// Verdict is the aggregated outcome of one verification run. It is a pure
// function of the surviving evidence set and the SourceProfile snapshot in
// use: identical inputs yield an identical verdict, which is what makes
// fingerprint-keyed caching sound.
type Verdict struct {
	ClaimID     string        `json:"claim_id"`
	Stance      VerdictStance `json:"stance"`
	Confidence  float64       `json:"confidence"`   // [0,1]
	EvidenceIDs []string      `json:"evidence_ids"` // Ranked order
	GeneratedAt time.Time     `json:"generated_at"`
	Fingerprint string        `json:"fingerprint"` // Hash of contributing evidence ids
}

// BackendOutcome records what a single backend contributed to a run.
// Surfaced on the report so degraded runs stay explainable.
type BackendOutcome struct {
	Backend   string        `json:"backend"`
	Hits      int           `json:"hits"`      // Raw hits returned
	Discarded int           `json:"discarded"` // Malformed hits dropped
	Duration  time.Duration `json:"duration_ns"`
	Err       string        `json:"error,omitempty"` // Timeout or unavailability, if any
}

// Report is the full result of one verification run: the deterministic
// verdict plus run metadata, the presented evidence slice and the complete
// ranked list retained for audit.
type Report struct {
	RunID    string           `json:"run_id"` // Unique per run, not part of the verdict
	Claim    Claim            `json:"claim"`
	Verdict  Verdict          `json:"verdict"`
	Evidence []EvidenceItem   `json:"evidence"` // Ranked, capped at presentation size
	Audit    []EvidenceItem   `json:"audit"`    // Full ranked list
	Partial  bool             `json:"partial"`  // True when some backend was dropped
	Matcher  string           `json:"matcher"`  // Relevance matcher actually used
	Backends []BackendOutcome `json:"backends,omitempty"`
}
