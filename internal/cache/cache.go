package cache

import (
	"encoding/json"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

// Store is the byte-level cache interface backing the verdict cache
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Verdicts caches verification reports under a caller-supplied run key.
// The key must cover every input the verdict is a function of: the claim,
// the run configuration, the profile snapshot version, and the evidence-set
// fingerprint. Sound because identical inputs resolve identically.
type Verdicts struct {
	store Store
	ttl   time.Duration
}

// NewVerdicts creates a verdict cache over the given store
func NewVerdicts(store Store, ttl time.Duration) *Verdicts {
	return &Verdicts{store: store, ttl: ttl}
}

// Get returns the cached report for a run key, if present
func (v *Verdicts) Get(runKey string) (*model.Report, bool) {
	data, ok := v.store.Get(key(runKey))
	if !ok {
		return nil, false
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		// Corrupt entry; drop it rather than serve garbage
		_ = v.store.Delete(key(runKey))
		return nil, false
	}
	return &report, true
}

// Put stores a report under its run key
func (v *Verdicts) Put(runKey string, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return v.store.Set(key(runKey), data, v.ttl)
}

// key namespaces run keys so cache format changes can bump the version
func key(runKey string) string {
	return "veridex:v2:" + runKey
}
