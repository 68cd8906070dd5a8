package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRegistry_Update_AppendOnly(t *testing.T) {
	registry := NewRegistry()
	first := registry.Snapshot()

	registry.Update(Profile{SourceID: "factcheck.example.org", Category: CategoryFactCheck, Accuracy: 0.8})
	second := registry.Snapshot()

	if second.Version != first.Version+1 {
		t.Errorf("expected version bump, got %d -> %d", first.Version, second.Version)
	}

	// The old snapshot must be unaffected by the update
	if _, ok := first.Lookup("factcheck.example.org"); ok {
		t.Error("prior snapshot must not see later updates")
	}
	if _, ok := second.Lookup("factcheck.example.org"); !ok {
		t.Error("new snapshot missing updated profile")
	}

	history := registry.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots in history, got %d", len(history))
	}
}

func TestRegistry_Update_SupersedesAndClamps(t *testing.T) {
	registry := NewRegistry()
	registry.Update(Profile{SourceID: "a.org", Category: CategoryAcademic, Accuracy: 0.9})
	registry.Update(Profile{SourceID: "a.org", Category: CategoryAcademic, Accuracy: 1.7})

	profile, ok := registry.Snapshot().Lookup("a.org")
	if !ok {
		t.Fatal("profile missing")
	}
	if profile.Accuracy != 1 {
		t.Errorf("accuracy should clamp to 1, got %f", profile.Accuracy)
	}

	registry.Update(Profile{SourceID: "a.org", Accuracy: -0.3})
	profile, _ = registry.Snapshot().Lookup("a.org")
	if profile.Accuracy != 0 {
		t.Errorf("accuracy should clamp to 0, got %f", profile.Accuracy)
	}
	if profile.Category != CategoryUnknown {
		t.Errorf("empty category should default to unknown, got %s", profile.Category)
	}
}

func TestRegistry_Update_IgnoresEmptyID(t *testing.T) {
	registry := NewRegistry()
	snap := registry.Update(Profile{SourceID: "", Accuracy: 0.5})
	if snap.Len() != 0 {
		t.Errorf("expected empty snapshot, got %d profiles", snap.Len())
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	seed := `sources:
  - source_id: snopes.com
    category: fact-check
    accuracy: 0.85
  - source_id: nature.com
    category: academic
    accuracy: 0.9
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	snapshot := registry.Snapshot()
	if snapshot.Len() != 2 {
		t.Fatalf("expected 2 profiles, got %d", snapshot.Len())
	}

	profile, ok := snapshot.Lookup("snopes.com")
	if !ok {
		t.Fatal("snopes.com missing")
	}
	if profile.Category != CategoryFactCheck || profile.Accuracy != 0.85 {
		t.Errorf("unexpected profile: %+v", profile)
	}

	profiles := snapshot.Profiles()
	if profiles[0].SourceID != "nature.com" {
		t.Errorf("Profiles() should sort by source id, got %s first", profiles[0].SourceID)
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCategoryPrior(t *testing.T) {
	tests := []struct {
		category Category
		want     float64
	}{
		{CategoryFactCheck, 0.7},
		{CategoryAcademic, 0.75},
		{CategoryTrustedNews, 0.6},
		{CategoryUnknown, 0.3},
		{Category("made-up"), 0.3},
	}
	for _, tt := range tests {
		if got := CategoryPrior(tt.category); got != tt.want {
			t.Errorf("CategoryPrior(%s) = %f, want %f", tt.category, got, tt.want)
		}
	}
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	registry := NewRegistry()
	registry.Update(Profile{SourceID: "a.org", Category: CategoryAcademic, Accuracy: 0.9, UpdatedAt: time.Now()})

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				snap := registry.Snapshot()
				if _, ok := snap.Lookup("a.org"); !ok {
					t.Error("lookup failed under concurrency")
					return
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		registry.Update(Profile{SourceID: "b.org", Category: CategoryTrustedNews, Accuracy: 0.6})
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
