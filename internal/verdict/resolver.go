package verdict

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

// Resolve reduces an annotated, floor-filtered evidence set to a verdict.
// It is a pure function of its arguments: identical evidence, config and
// timestamp always produce an identical verdict, which is what allows
// caching by evidence-set fingerprint.
//
// Items are expected in ranked order; that order becomes the verdict's
// evidence id list. The fingerprint is order-insensitive.
func Resolve(claimID string, items []model.EvidenceItem, cfg model.VerifyConfig, generatedAt time.Time) model.Verdict {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	v := model.Verdict{
		ClaimID:     claimID,
		EvidenceIDs: ids,
		GeneratedAt: generatedAt.UTC(),
		Fingerprint: Fingerprint(ids),
	}

	var total, net float64
	sources := make(map[string]bool)
	for _, item := range items {
		total += item.Weight()
		net += item.SignedWeight()
		sources[item.SourceID] = true
	}

	// Coverage gate: too little accumulated weight or too few independent
	// sources means no verdict may be issued.
	if total < cfg.CoverageWeight || len(sources) < cfg.MinSources {
		v.Stance = model.VerdictInsufficient
		v.Confidence = 0
		return v
	}

	decisiveness := math.Abs(net) / total
	switch {
	case decisiveness >= cfg.DecisiveRatio && net > 0:
		v.Stance = model.VerdictSupported
	case decisiveness >= cfg.DecisiveRatio && net < 0:
		v.Stance = model.VerdictRefuted
	default:
		v.Stance = model.VerdictDisputed
	}

	v.Confidence = confidence(total, decisiveness)
	return v
}

// confidence combines the accumulated weight and the decisiveness ratio.
// Monotonic in both, always in [0,1]: weight saturates so piling on more
// evidence approaches but never fakes certainty.
func confidence(total, decisiveness float64) float64 {
	saturation := total / (total + 1)
	c := decisiveness * saturation
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Fingerprint hashes the contributing evidence id set. Sorted before
// hashing, so the same set in any order maps to the same key.
func Fingerprint(evidenceIDs []string) string {
	sorted := append([]string(nil), evidenceIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}
