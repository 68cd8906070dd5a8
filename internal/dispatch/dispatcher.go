package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/counterfact/veridex/internal/backend"
	"github.com/counterfact/veridex/internal/model"
	"github.com/counterfact/veridex/internal/relevance"
)

const searchMaxAttempts = 2

// Injectable clock and retry sleep so tests run without waiting
var (
	dispatchNowFunc   = time.Now
	dispatchSleepFunc = time.Sleep
)

// Dispatcher fans a claim out to all configured backends concurrently,
// applies per-backend timeouts and rate limits, and merges the raw hits
// into a deduplicated, capped evidence set. A failing backend drops out of
// the run; it never fails the whole verification.
type Dispatcher struct {
	backends []backend.Backend
	limiter  *Limiter
}

// Result is the dispatcher's contribution to one verification run
type Result struct {
	Items    []model.EvidenceItem   // Deduplicated, capped, naive-relevance ordered
	Partial  bool                   // True when any backend contributed nothing due to failure
	Outcomes []model.BackendOutcome // Per-backend diagnostics, in backend order
}

// NewDispatcher creates a dispatcher over the given backends
func NewDispatcher(backends []backend.Backend, limiter *Limiter) *Dispatcher {
	if limiter == nil {
		limiter = NewLimiter(2, 2, 2)
	}
	return &Dispatcher{backends: backends, limiter: limiter}
}

// backendReturn is one backend task's contribution, accumulated append-only
type backendReturn struct {
	index   int
	items   []model.EvidenceItem // Locally deduplicated, hit order preserved
	outcome model.BackendOutcome
}

// Dispatch queries every backend concurrently and merges the results. The
// context carries the overall deadline; once it expires, outstanding
// backends are abandoned and the run is marked partial.
func (d *Dispatcher) Dispatch(ctx context.Context, claim model.Claim, cfg model.VerifyConfig) Result {
	if len(d.backends) == 0 {
		return Result{Partial: false}
	}

	// One task per backend; each appends only its own return value.
	returns := make(chan backendReturn, len(d.backends))
	for i, b := range d.backends {
		go func(index int, b backend.Backend) {
			returns <- d.searchOne(ctx, index, b, claim, cfg)
		}(i, b)
	}

	outcomes := make([]model.BackendOutcome, len(d.backends))
	received := make([]bool, len(d.backends))
	collected := make([][]model.EvidenceItem, len(d.backends))

	pending := len(d.backends)
	for pending > 0 {
		select {
		case ret := <-returns:
			outcomes[ret.index] = ret.outcome
			received[ret.index] = true
			collected[ret.index] = ret.items
			pending--
		case <-ctx.Done():
			pending = 0
		}
	}

	partial := false
	for i, b := range d.backends {
		if !received[i] {
			// Deadline elapsed with the backend still outstanding
			outcomes[i] = model.BackendOutcome{
				Backend: b.Name(),
				Err:     backend.ErrTimeout.Error(),
			}
		}
		if outcomes[i].Err != "" {
			partial = true
		}
	}

	// Merge and dedup single-threaded, after all tasks have joined or
	// been abandoned.
	merged := mergeItems(collected)
	capItems(&merged, claim.Text, cfg.MaxEvidence)

	return Result{Items: merged, Partial: partial, Outcomes: outcomes}
}

// searchOne runs one backend with its own timeout, retrying once on
// transient failure, and returns locally deduplicated items.
func (d *Dispatcher) searchOne(ctx context.Context, index int, b backend.Backend, claim model.Claim, cfg model.VerifyConfig) backendReturn {
	started := dispatchNowFunc()
	outcome := model.BackendOutcome{Backend: b.Name()}

	finish := func(items []model.EvidenceItem) backendReturn {
		outcome.Duration = dispatchNowFunc().Sub(started)
		return backendReturn{index: index, items: items, outcome: outcome}
	}

	release, err := d.limiter.Acquire(ctx, b.Name())
	if err != nil {
		outcome.Err = backend.ErrTimeout.Error()
		return finish(nil)
	}
	defer release()

	var hits []model.RawHit
	for attempt := 0; attempt < searchMaxAttempts; attempt++ {
		searchCtx, cancel := context.WithTimeout(ctx, cfg.PerBackendTimeout)
		hits, err = b.Search(searchCtx, claim)
		cancel()
		if err == nil || !backend.Retryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < searchMaxAttempts-1 {
			dispatchSleepFunc(time.Duration(attempt+1) * 500 * time.Millisecond)
		}
	}
	if err != nil {
		outcome.Err = err.Error()
		return finish(nil)
	}

	outcome.Hits = len(hits)
	items, discarded := d.normalizeHits(claim, hits)
	outcome.Discarded = discarded
	return finish(items)
}

// normalizeHits turns raw hits into evidence items, discarding malformed
// ones and deduplicating within the backend's own result set.
func (d *Dispatcher) normalizeHits(claim model.Claim, hits []model.RawHit) (items []model.EvidenceItem, discarded int) {
	byKey := make(map[string]int)
	retrievedAt := dispatchNowFunc().UTC()

	for _, hit := range hits {
		if hit.Snippet == "" || hit.SourceID == "" {
			discarded++
			continue
		}

		canonical := CanonicalURL(hit.URL)
		hash := ContentHash(hit.Snippet)
		key := dedupKey(canonical, hash)

		if idx, seen := byKey[key]; seen {
			items[idx].Corroboration++
			continue
		}

		stance := hit.Stance
		if stance == "" {
			stance = backend.InferStance(hit.Snippet)
		}

		byKey[key] = len(items)
		items = append(items, model.EvidenceItem{
			ID:             evidenceID(key),
			ClaimID:        claim.ID,
			SourceID:       hit.SourceID,
			Snippet:        hit.Snippet,
			CanonicalURL:   canonical,
			ContentHash:    hash,
			SourceCategory: hit.Category,
			Stance:         stance,
			PublishedAt:    hit.PublishedAt,
			RetrievedAt:    retrievedAt,
		})
	}
	return items, discarded
}

// mergeItems folds per-backend slices into one deduplicated set. The
// first-seen instance of a key is kept; later duplicates only raise its
// corroboration counter.
func mergeItems(collected [][]model.EvidenceItem) []model.EvidenceItem {
	var merged []model.EvidenceItem
	byKey := make(map[string]int)

	for _, items := range collected {
		for _, item := range items {
			key := dedupKey(item.CanonicalURL, item.ContentHash)
			if idx, seen := byKey[key]; seen {
				merged[idx].Corroboration += item.Corroboration + 1
				continue
			}
			byKey[key] = len(merged)
			merged = append(merged, item)
		}
	}
	return merged
}

// capItems bounds downstream scoring cost: order by naive token overlap
// with the claim (id ascending on ties, for determinism) and keep the top n.
func capItems(items *[]model.EvidenceItem, claimText string, n int) {
	list := *items
	overlap := make(map[string]float64, len(list))
	for _, item := range list {
		overlap[item.ID] = relevance.Overlap(claimText, item.Snippet)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if overlap[list[i].ID] != overlap[list[j].ID] {
			return overlap[list[i].ID] > overlap[list[j].ID]
		}
		return list[i].ID < list[j].ID
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	*items = list
}
