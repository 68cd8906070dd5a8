package credibility

import (
	"math"
	"time"

	"github.com/counterfact/veridex/internal/model"
	"github.com/counterfact/veridex/internal/source"
)

// Scorer computes a normalized trust score per evidence item from an
// explicit SourceProfile snapshot. The snapshot is fixed for the whole
// run, so evidence gathered for other claims can never retroactively move
// a score computed here.
type Scorer struct {
	snapshot source.Snapshot
	cfg      model.VerifyConfig
	now      time.Time // Fixed at construction so one run scores recency consistently
}

// NewScorer creates a scorer bound to one snapshot and one config
func NewScorer(snapshot source.Snapshot, cfg model.VerifyConfig, now time.Time) *Scorer {
	return &Scorer{snapshot: snapshot, cfg: cfg, now: now.UTC()}
}

// Score returns the item's credibility in [0,1]: the weighted sum of the
// source's accuracy prior, recency decay, and a saturating corroboration
// bonus. A registry miss resolves through the category prior, never fails.
func (s *Scorer) Score(item model.EvidenceItem) float64 {
	cfg := s.cfg

	prior := s.prior(item.SourceID, item.SourceCategory)
	recency := s.recency(item.PublishedAt)
	corroboration := saturate(item.Corroboration)

	weightSum := cfg.PriorWeight + cfg.RecencyWeight + cfg.CorroborationWeight
	score := (cfg.PriorWeight*prior + cfg.RecencyWeight*recency + cfg.CorroborationWeight*corroboration) / weightSum

	return clamp01(score)
}

// prior is the source's historical accuracy when the registry knows the
// source, otherwise the default for the backend's category hint
func (s *Scorer) prior(sourceID, categoryHint string) float64 {
	if profile, ok := s.snapshot.Lookup(sourceID); ok {
		return clamp01(profile.Accuracy)
	}
	return source.CategoryPrior(source.ParseCategory(categoryHint))
}

// recency applies exponential decay with the configured half-life.
// Evidence without a publication date gets the half-life midpoint rather
// than the extremes either way.
func (s *Scorer) recency(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return 0.5
	}
	ageDays := s.now.Sub(publishedAt.UTC()).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-math.Ln2 * ageDays / s.cfg.RecencyHalfLife)
}

// saturate maps a duplicate count to [0,1) with diminishing returns, so
// ten copies of one weak source never outweigh one strong independent one
func saturate(corroboration int) float64 {
	if corroboration <= 0 {
		return 0
	}
	c := float64(corroboration)
	return c / (c + 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
