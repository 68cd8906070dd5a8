package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/counterfact/veridex/internal/model"
)

func TestStatic_Search(t *testing.T) {
	s := NewStatic("fixtures", map[string][]model.RawHit{
		"Drones Near The Border": {
			{SourceID: "news.example.org", URL: "https://news.example.org/a", Snippet: "Coverage of the drones."},
		},
	})

	hits, err := s.Search(context.Background(), model.Claim{Text: "were there drones near the border last week"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("substring match should hit, got %d hits", len(hits))
	}

	hits, err = s.Search(context.Background(), model.Claim{Text: "an unrelated claim"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("unmatched claim should return nothing, got %d hits", len(hits))
	}
}

func TestStatic_CanceledContext(t *testing.T) {
	s := NewStatic("fixtures", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Search(ctx, model.Claim{Text: "anything"}); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	content := `{"the claim": [{"source_id": "s.example.org", "url": "https://s.example.org/a", "snippet": "text"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := LoadStatic("fixtures", path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	hits, err := s.Search(context.Background(), model.Claim{Text: "the claim"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].SourceID != "s.example.org" {
		t.Errorf("fixture not parsed: %+v", hits)
	}

	if _, err := LoadStatic("fixtures", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing fixture")
	}
}
