package source

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// registryNowFunc is the clock used for snapshot timestamps (injectable for tests)
var registryNowFunc = time.Now

// Registry is the shared, read-mostly store of source profiles. Reads are
// concurrent; writes are serialized and append-only, each producing a new
// immutable Snapshot. Scoring always runs against an explicit Snapshot so
// a concurrent update can never change a verdict mid-run.
type Registry struct {
	mu      sync.RWMutex
	current Snapshot
	history []Snapshot // Every snapshot ever published, oldest first
}

// Snapshot is an immutable view of the registry at one point in time
type Snapshot struct {
	Version  int                `json:"version"`
	TakenAt  time.Time          `json:"taken_at"`
	profiles map[string]Profile // Keyed by source id; never mutated after publish
}

// NewRegistry creates an empty registry with a version-1 snapshot
func NewRegistry() *Registry {
	r := &Registry{}
	r.current = Snapshot{
		Version:  1,
		TakenAt:  registryNowFunc().UTC(),
		profiles: map[string]Profile{},
	}
	r.history = []Snapshot{r.current}
	return r
}

// LoadRegistry reads a YAML seed file of profiles into a fresh registry
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var seed struct {
		Sources []Profile `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	r := NewRegistry()
	r.Update(seed.Sources...)
	return r, nil
}

// Snapshot returns the current immutable snapshot
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Update publishes a new snapshot containing the given profiles on top of
// the current ones. Existing entries for the same source id are superseded
// in the new snapshot; prior snapshots are retained untouched.
func (r *Registry) Update(profiles ...Profile) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]Profile, len(r.current.profiles)+len(profiles))
	for id, p := range r.current.profiles {
		next[id] = p
	}
	now := registryNowFunc().UTC()
	for _, p := range profiles {
		if p.SourceID == "" {
			continue
		}
		if p.Accuracy < 0 {
			p.Accuracy = 0
		}
		if p.Accuracy > 1 {
			p.Accuracy = 1
		}
		if p.Category == "" {
			p.Category = CategoryUnknown
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		next[p.SourceID] = p
	}

	snap := Snapshot{
		Version:  r.current.Version + 1,
		TakenAt:  now,
		profiles: next,
	}
	r.current = snap
	r.history = append(r.history, snap)
	return snap
}

// History returns all published snapshots, oldest first
func (r *Registry) History() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Snapshot(nil), r.history...)
}

// Lookup returns the profile for a source id and whether it was found
func (s Snapshot) Lookup(sourceID string) (Profile, bool) {
	p, ok := s.profiles[sourceID]
	return p, ok
}

// Len returns the number of profiles in the snapshot
func (s Snapshot) Len() int {
	return len(s.profiles)
}

// Profiles returns the snapshot's profiles sorted by source id
func (s Snapshot) Profiles() []Profile {
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}
