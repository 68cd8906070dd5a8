package rank

import (
	"testing"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

func ranked(id, sourceID string, credibility, relevance float64, publishedAt *time.Time) model.EvidenceItem {
	return model.EvidenceItem{
		ID:          id,
		SourceID:    sourceID,
		Credibility: credibility,
		Relevance:   relevance,
		PublishedAt: publishedAt,
	}
}

func ids(items []model.EvidenceItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func assertOrder(t *testing.T, items []model.EvidenceItem, want ...string) {
	t.Helper()
	got := ids(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRank_WeightDescending(t *testing.T) {
	items := []model.EvidenceItem{
		ranked("low", "a.example.org", 0.5, 0.5, nil),
		ranked("high", "b.example.org", 0.9, 0.9, nil),
		ranked("mid", "c.example.org", 0.7, 0.7, nil),
	}
	presented, full := Rank(items, model.DefaultVerifyConfig())
	assertOrder(t, presented, "high", "mid", "low")
	assertOrder(t, full, "high", "mid", "low")
}

func TestRank_TieBrokenByCredibility(t *testing.T) {
	// Equal weights 0.42, well within the default 0.02 epsilon.
	items := []model.EvidenceItem{
		ranked("lowcred", "a.example.org", 0.6, 0.7, nil),
		ranked("highcred", "b.example.org", 0.7, 0.6, nil),
	}
	presented, _ := Rank(items, model.DefaultVerifyConfig())
	assertOrder(t, presented, "highcred", "lowcred")
}

func TestRank_NearTieChainIsTotalOrder(t *testing.T) {
	// Every neighbor sits inside the tie epsilon of the next while the
	// chain ends are far apart, and credibility runs against weight. A
	// pairwise epsilon comparison cycles on this input; banding must not.
	items := []model.EvidenceItem{
		ranked("e1", "a.example.org", 0.62, 0.970, nil),
		ranked("e2", "b.example.org", 0.67, 0.875, nil),
		ranked("e3", "c.example.org", 0.72, 0.793, nil),
		ranked("e4", "d.example.org", 0.77, 0.722, nil),
		ranked("e5", "e.example.org", 0.82, 0.660, nil),
	}

	cfg := model.DefaultVerifyConfig()
	presented, _ := Rank(items, cfg)
	if len(presented) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(presented))
	}

	// A later item may outweigh an earlier one only within the epsilon band.
	for i := 0; i < len(presented); i++ {
		for j := i + 1; j < len(presented); j++ {
			if presented[j].Weight() > presented[i].Weight()+cfg.TieEpsilon {
				t.Errorf("%s (weight %.4f) ranked above %s (weight %.4f)",
					presented[i].ID, presented[i].Weight(), presented[j].ID, presented[j].Weight())
			}
		}
	}

	// The order is a function of the items, not of arrival order.
	reversed := []model.EvidenceItem{items[4], items[3], items[2], items[1], items[0]}
	again, _ := Rank(reversed, cfg)
	assertOrder(t, again, ids(presented)...)
}

func TestRank_TieBrokenByRecency(t *testing.T) {
	newer := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []model.EvidenceItem{
		ranked("undated", "a.example.org", 0.7, 0.7, nil),
		ranked("older", "b.example.org", 0.7, 0.7, &older),
		ranked("newer", "c.example.org", 0.7, 0.7, &newer),
	}
	presented, _ := Rank(items, model.DefaultVerifyConfig())
	assertOrder(t, presented, "newer", "older", "undated")
}

func TestRank_TieBrokenBySourceThenID(t *testing.T) {
	items := []model.EvidenceItem{
		ranked("z", "b.example.org", 0.7, 0.7, nil),
		ranked("y", "a.example.org", 0.7, 0.7, nil),
		ranked("x", "a.example.org", 0.7, 0.7, nil),
	}
	presented, _ := Rank(items, model.DefaultVerifyConfig())
	assertOrder(t, presented, "x", "y", "z")
}

func TestRank_ArrivalOrderNeverDecides(t *testing.T) {
	a := ranked("e1", "a.example.org", 0.7, 0.7, nil)
	b := ranked("e2", "b.example.org", 0.7, 0.7, nil)
	c := ranked("e3", "c.example.org", 0.9, 0.9, nil)

	first, _ := Rank([]model.EvidenceItem{a, b, c}, model.DefaultVerifyConfig())
	second, _ := Rank([]model.EvidenceItem{c, b, a}, model.DefaultVerifyConfig())
	assertOrder(t, first, ids(second)...)
}

func TestRank_DiversityCapDemotes(t *testing.T) {
	t1 := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	items := []model.EvidenceItem{
		ranked("dom1", "dominant.example.org", 0.9, 0.9, &t1),
		ranked("dom2", "dominant.example.org", 0.9, 0.9, &t2),
		ranked("dom3", "dominant.example.org", 0.9, 0.9, &t3),
		ranked("other", "other.example.org", 0.5, 0.5, nil),
	}

	cfg := model.DefaultVerifyConfig()
	cfg.DiversityCap = 2
	presented, full := Rank(items, cfg)

	// Third item from the dominant source drops below the cutoff but stays
	// in the full list.
	assertOrder(t, presented, "dom1", "dom2", "other")
	assertOrder(t, full, "dom1", "dom2", "other", "dom3")
}

func TestRank_PresentationSizeCap(t *testing.T) {
	var items []model.EvidenceItem
	for i := 0; i < 15; i++ {
		items = append(items, ranked(
			string(rune('a'+i)),
			string(rune('a'+i))+".example.org",
			0.5+float64(i)*0.01, 0.9, nil,
		))
	}

	cfg := model.DefaultVerifyConfig()
	cfg.PresentationSize = 10
	presented, full := Rank(items, cfg)

	if len(presented) != 10 {
		t.Fatalf("expected 10 presented items, got %d", len(presented))
	}
	if len(full) != 15 {
		t.Fatalf("full list must keep every item, got %d", len(full))
	}

	for i := 0; i < len(presented)-1; i++ {
		if presented[i].Weight() < presented[i+1].Weight() {
			t.Fatal("presented items out of weight order")
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	items := []model.EvidenceItem{
		ranked("low", "a.example.org", 0.5, 0.5, nil),
		ranked("high", "b.example.org", 0.9, 0.9, nil),
	}
	Rank(items, model.DefaultVerifyConfig())
	if items[0].ID != "low" || items[1].ID != "high" {
		t.Errorf("input slice was reordered: %v", ids(items))
	}
}

func TestRank_Empty(t *testing.T) {
	presented, full := Rank(nil, model.DefaultVerifyConfig())
	if len(presented) != 0 || len(full) != 0 {
		t.Errorf("empty input should rank empty, got %v / %v", presented, full)
	}
}
