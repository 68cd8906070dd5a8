package rank

import (
	"math"
	"sort"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

// Rank orders surviving evidence for presentation. Primary key is
// credibility×relevance descending, quantized into epsilon-width bands so
// near-equal weights compare as equal; ties within a band are broken by
// credibility, then recency, then source id, then item id, so output order
// never depends on arrival order.
//
// The diversity cap limits each source to cfg.DiversityCap slots in the
// presented set; excess duplicates are demoted below the presentation
// cutoff, never dropped. The returned full list keeps every item for audit.
func Rank(items []model.EvidenceItem, cfg model.VerifyConfig) (presented, full []model.EvidenceItem) {
	sorted := append([]model.EvidenceItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j], cfg.TieEpsilon)
	})

	var top, demoted []model.EvidenceItem
	perSource := make(map[string]int)
	for _, item := range sorted {
		if len(top) < cfg.PresentationSize && perSource[item.SourceID] < cfg.DiversityCap {
			top = append(top, item)
			perSource[item.SourceID]++
			continue
		}
		demoted = append(demoted, item)
	}

	full = append(top, demoted...)
	return top, full
}

func less(a, b model.EvidenceItem, epsilon float64) bool {
	wa, wb := a.Weight(), b.Weight()
	if wa != wb && (epsilon <= 0 || band(wa, epsilon) != band(wb, epsilon)) {
		return wa > wb
	}
	// Within the tie band credibility decides, never arrival order
	if a.Credibility != b.Credibility {
		return a.Credibility > b.Credibility
	}
	ra, rb := recency(a), recency(b)
	if !ra.Equal(rb) {
		return ra.After(rb)
	}
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	return a.ID < b.ID
}

// band quantizes a weight into its epsilon-wide bucket. A pairwise
// "within epsilon means equal" rule is not transitive: a chain of items
// each just inside epsilon of its neighbor forms a cycle. Fixed buckets
// give a strict weak order, which sort.Slice requires.
func band(weight, epsilon float64) int64 {
	return int64(math.Round(weight / epsilon))
}

// recency treats undated evidence as oldest
func recency(item model.EvidenceItem) time.Time {
	if item.PublishedAt == nil {
		return time.Time{}
	}
	return *item.PublishedAt
}
