package verdict

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

var resolveAt = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func item(id, sourceID string, stance model.Stance, credibility, relevance float64) model.EvidenceItem {
	return model.EvidenceItem{
		ID:          id,
		SourceID:    sourceID,
		Stance:      stance,
		Credibility: credibility,
		Relevance:   relevance,
	}
}

func TestResolve_NoEvidence(t *testing.T) {
	v := Resolve("c1", nil, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictInsufficient {
		t.Errorf("expected insufficient_evidence, got %s", v.Stance)
	}
	if v.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", v.Confidence)
	}
	if v.ClaimID != "c1" {
		t.Errorf("unexpected claim id %s", v.ClaimID)
	}
	if v.Fingerprint == "" {
		t.Error("even an empty evidence set has a fingerprint")
	}
}

func TestResolve_UnanimousRefutation(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "factcheck.example.org", model.StanceRefutes, 0.7, 0.9),
		item("e2", "news.example.org", model.StanceRefutes, 0.7, 0.9),
		item("e3", "academic.example.edu", model.StanceRefutes, 0.7, 0.9),
	}

	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictRefuted {
		t.Fatalf("expected refuted, got %s", v.Stance)
	}
	// Total weight 1.89, fully decisive: confidence 1.89/2.89.
	if v.Confidence <= 0.6 || v.Confidence >= 0.7 {
		t.Errorf("confidence %f outside expected range", v.Confidence)
	}
	if !reflect.DeepEqual(v.EvidenceIDs, []string{"e1", "e2", "e3"}) {
		t.Errorf("evidence ids should follow input order, got %v", v.EvidenceIDs)
	}
}

func TestResolve_UnanimousSupport(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "a.example.org", model.StanceSupports, 0.8, 0.9),
		item("e2", "b.example.org", model.StanceSupports, 0.8, 0.9),
	}
	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictSupported {
		t.Errorf("expected supported, got %s", v.Stance)
	}
	if v.Confidence <= 0 {
		t.Errorf("expected positive confidence, got %f", v.Confidence)
	}
}

func TestResolve_LoneWeakSupporter(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "blog.example.com", model.StanceSupports, 0.2, 0.9),
	}
	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictInsufficient {
		t.Errorf("one weak source should fail the coverage gate, got %s", v.Stance)
	}
	if v.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", v.Confidence)
	}
}

func TestResolve_TooFewIndependentSources(t *testing.T) {
	// Plenty of weight, but all of it from a single source.
	items := []model.EvidenceItem{
		item("e1", "solo.example.org", model.StanceSupports, 0.9, 0.9),
		item("e2", "solo.example.org", model.StanceSupports, 0.9, 0.9),
	}
	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictInsufficient {
		t.Errorf("a single independent source should fail the gate, got %s", v.Stance)
	}
}

func TestResolve_SplitEvidenceIsDisputed(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "a.example.org", model.StanceSupports, 0.7, 0.9),
		item("e2", "b.example.org", model.StanceRefutes, 0.7, 0.9),
	}
	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictDisputed {
		t.Errorf("balanced evidence should be disputed, got %s", v.Stance)
	}
}

func TestResolve_NeutralEvidenceDilutesDecisiveness(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "a.example.org", model.StanceSupports, 0.7, 0.9),
		item("e2", "b.example.org", model.StanceNeutral, 0.7, 0.9),
		item("e3", "c.example.org", model.StanceNeutral, 0.7, 0.9),
	}
	// Net 0.63 over total 1.89: decisiveness 1/3, short of 0.6.
	v := Resolve("c1", items, model.DefaultVerifyConfig(), resolveAt)
	if v.Stance != model.VerdictDisputed {
		t.Errorf("neutral-heavy evidence should be disputed, got %s", v.Stance)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	items := []model.EvidenceItem{
		item("e1", "a.example.org", model.StanceRefutes, 0.7, 0.9),
		item("e2", "b.example.org", model.StanceRefutes, 0.6, 0.8),
	}
	cfg := model.DefaultVerifyConfig()

	first := Resolve("c1", items, cfg, resolveAt)
	second := Resolve("c1", items, cfg, resolveAt)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must resolve identically:\n%+v\n%+v", first, second)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Error("serialized verdicts must be byte-identical")
	}
}

func TestResolve_ConfidenceBounds(t *testing.T) {
	many := make([]model.EvidenceItem, 40)
	for i := range many {
		many[i] = item(fmt.Sprintf("e%d", i), fmt.Sprintf("s%d.example.org", i), model.StanceRefutes, 1, 1)
	}
	v := Resolve("c1", many, model.DefaultVerifyConfig(), resolveAt)
	if v.Confidence < 0 || v.Confidence > 1 {
		t.Errorf("confidence %f outside [0,1]", v.Confidence)
	}
	if v.Confidence >= 1 {
		t.Errorf("confidence must stay below 1, got %f", v.Confidence)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"e1", "e2", "e3"})
	b := Fingerprint([]string{"e3", "e1", "e2"})
	if a != b {
		t.Error("fingerprint must be order-insensitive")
	}

	c := Fingerprint([]string{"e1", "e2"})
	if a == c {
		t.Error("different evidence sets must not share a fingerprint")
	}

	if Fingerprint(nil) != Fingerprint([]string{}) {
		t.Error("nil and empty id sets are the same set")
	}
}

func TestFingerprint_DoesNotMutateInput(t *testing.T) {
	ids := []string{"e3", "e1", "e2"}
	Fingerprint(ids)
	if !reflect.DeepEqual(ids, []string{"e3", "e1", "e2"}) {
		t.Errorf("input slice was reordered: %v", ids)
	}
}
