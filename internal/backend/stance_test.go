package backend

import (
	"testing"

	"github.com/counterfact/veridex/internal/model"
)

func TestInferStance(t *testing.T) {
	tests := []struct {
		snippet string
		want    model.Stance
	}{
		{"This claim has been debunked by multiple investigations", model.StanceRefutes},
		{"There is no evidence supporting the allegation", model.StanceRefutes},
		{"Officials confirmed the deployment on Tuesday", model.StanceSupports},
		{"The report was verified by independent observers", model.StanceSupports},
		{"The figures are consistent with customs records", model.StanceSupports},
		{"Talks continued through the weekend in Geneva", model.StanceNeutral},
		{"", model.StanceNeutral},
	}

	for _, tt := range tests {
		if got := InferStance(tt.snippet); got != tt.want {
			t.Errorf("InferStance(%q) = %s, want %s", tt.snippet, got, tt.want)
		}
	}
}

func TestInferStance_RefuteWinsOverSupport(t *testing.T) {
	// Fact-check prose routinely restates the claim it debunks
	snippet := "The video said to be confirmed footage is in fact fabricated"
	if got := InferStance(snippet); got != model.StanceRefutes {
		t.Errorf("expected refutes when both polarities appear, got %s", got)
	}
}
