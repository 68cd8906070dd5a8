package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/counterfact/veridex/internal/cache"
	"github.com/counterfact/veridex/internal/credibility"
	"github.com/counterfact/veridex/internal/dispatch"
	"github.com/counterfact/veridex/internal/model"
	"github.com/counterfact/veridex/internal/rank"
	"github.com/counterfact/veridex/internal/relevance"
	"github.com/counterfact/veridex/internal/source"
	"github.com/counterfact/veridex/internal/verdict"
)

// verifyNowFunc is the run clock (injectable for determinism tests)
var verifyNowFunc = time.Now

// Verifier runs the full verification pipeline for one claim at a time:
// dispatch, relevance and credibility annotation, aggregation, ranking.
// Verifications of distinct claims are fully independent; the only shared
// state is the read-mostly source registry, consumed through an immutable
// snapshot per run.
type Verifier struct {
	dispatcher *dispatch.Dispatcher
	matcher    relevance.Matcher
	registry   *source.Registry
	verdicts   *cache.Verdicts // nil disables caching
}

// New creates a verifier. A nil matcher defaults to the deterministic
// lexical matcher; a nil cache disables fingerprint caching.
func New(dispatcher *dispatch.Dispatcher, matcher relevance.Matcher, registry *source.Registry, verdicts *cache.Verdicts) *Verifier {
	if matcher == nil {
		matcher = relevance.NewLexical()
	}
	if registry == nil {
		registry = source.NewRegistry()
	}
	return &Verifier{
		dispatcher: dispatcher,
		matcher:    matcher,
		registry:   registry,
		verdicts:   verdicts,
	}
}

// Verify gathers evidence for the claim and resolves a verdict. Backend
// failures degrade the run to partial; the only hard failures are an
// invalid configuration and context cancellation before dispatch.
func (v *Verifier) Verify(ctx context.Context, claim model.Claim, cfg model.VerifyConfig) (*model.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.OverallDeadline)
	defer cancel()

	// One snapshot per run; a concurrent registry update cannot move
	// scores mid-run.
	snapshot := v.registry.Snapshot()

	result := v.dispatcher.Dispatch(runCtx, claim, cfg)

	annotated, matcherName, err := v.annotate(runCtx, claim, result.Items, snapshot, cfg)
	if err != nil {
		return nil, fmt.Errorf("annotate evidence: %w", err)
	}

	presented, full := rank.Rank(annotated, cfg)

	var runKey string
	if v.verdicts != nil {
		ids := make([]string, len(full))
		for i, item := range full {
			ids[i] = item.ID
		}
		runKey = cacheKey(claim.ID, cfg, snapshot.Version, verdict.Fingerprint(ids))
		if cached, ok := v.verdicts.Get(runKey); ok {
			return cached, nil
		}
	}

	vd := verdict.Resolve(claim.ID, full, cfg, verifyNowFunc())

	report := &model.Report{
		RunID:    uuid.NewString(),
		Claim:    claim,
		Verdict:  vd,
		Evidence: presented,
		Audit:    full,
		Partial:  result.Partial,
		Matcher:  matcherName,
		Backends: result.Outcomes,
	}

	if v.verdicts != nil {
		// A failed cache write only costs the next run a recompute
		_ = v.verdicts.Put(runKey, report)
	}
	return report, nil
}

// cacheKey scopes a cached verdict to everything it is a function of: the
// claim, the run thresholds, the profile snapshot version, and the evidence
// set. Two claims surfacing the same URLs share a fingerprint but never a
// cache entry, and a registry update or config change invalidates naturally.
func cacheKey(claimID string, cfg model.VerifyConfig, snapshotVersion int, fingerprint string) string {
	// VerifyConfig holds only scalar fields
	cfgBytes, _ := json.Marshal(cfg)

	h := sha256.New()
	fmt.Fprintf(h, "%s\n%d\n%s\n", claimID, snapshotVersion, fingerprint)
	h.Write(cfgBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// annotate scores relevance and credibility, then applies the relevance
// floor. Items below the floor never reach aggregation or output. When the
// configured matcher fails (an embedding service outage, say), the run
// degrades to the lexical matcher instead of failing.
func (v *Verifier) annotate(ctx context.Context, claim model.Claim, items []model.EvidenceItem, snapshot source.Snapshot, cfg model.VerifyConfig) ([]model.EvidenceItem, string, error) {
	if len(items) == 0 {
		return nil, v.matcher.Name(), nil
	}

	snippets := make([]string, len(items))
	for i, item := range items {
		snippets[i] = item.Snippet
	}

	matcher := v.matcher
	scores, err := matcher.Score(ctx, claim.Text, snippets)
	if err != nil && matcher.Name() != "lexical" {
		matcher = relevance.NewLexical()
		scores, err = matcher.Score(ctx, claim.Text, snippets)
	}
	if err != nil {
		return nil, matcher.Name(), err
	}
	if len(scores) != len(items) {
		return nil, matcher.Name(), fmt.Errorf("matcher returned %d scores for %d items", len(scores), len(items))
	}

	scorer := credibility.NewScorer(snapshot, cfg, verifyNowFunc())

	survivors := make([]model.EvidenceItem, 0, len(items))
	for i, item := range items {
		item.Relevance = clamp01(scores[i])
		if item.Relevance < cfg.RelevanceFloor {
			continue
		}
		item.Credibility = scorer.Score(item)
		survivors = append(survivors, item)
	}
	return survivors, matcher.Name(), nil
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
