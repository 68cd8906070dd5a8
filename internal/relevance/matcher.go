package relevance

import (
	"context"
	"math"
	"strings"
)

// Matcher scores semantic closeness between a claim and evidence snippets.
// Scores are always in [0,1].
type Matcher interface {
	// Name identifies the matcher in run diagnostics
	Name() string

	// Score returns one relevance score per snippet, aligned by index
	Score(ctx context.Context, claimText string, snippets []string) ([]float64, error)
}

// Lexical is the default matcher: term-frequency cosine similarity over
// normalized tokens. Fully deterministic and offline, which keeps verdicts
// reproducible without an embedding service.
type Lexical struct{}

// NewLexical creates the lexical matcher
func NewLexical() *Lexical { return &Lexical{} }

// Name returns the matcher name
func (l *Lexical) Name() string { return "lexical" }

// Score computes TF cosine similarity between the claim and each snippet
func (l *Lexical) Score(ctx context.Context, claimText string, snippets []string) ([]float64, error) {
	claimVec := termVector(claimText)
	scores := make([]float64, len(snippets))
	for i, snippet := range snippets {
		scores[i] = cosine(claimVec, termVector(snippet))
	}
	return scores, nil
}

// stopwords excluded from term vectors; function words drown the signal
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "its": true,
	"of": true, "on": true, "or": true, "that": true, "the": true,
	"to": true, "was": true, "were": true, "will": true, "with": true,
}

// Tokenize splits text into normalized terms, dropping stopwords
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Overlap returns the fraction of the claim's terms found in the snippet.
// Cheap, used by the dispatcher for its naive pre-scoring cap.
func Overlap(claimText, snippet string) float64 {
	claimTokens := Tokenize(claimText)
	if len(claimTokens) == 0 {
		return 0
	}
	snippetSet := make(map[string]bool)
	for _, t := range Tokenize(snippet) {
		snippetSet[t] = true
	}
	matched := 0
	for _, t := range claimTokens {
		if snippetSet[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(claimTokens))
}

func termVector(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, t := range Tokenize(text) {
		vec[t]++
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, weight := range a {
		normA += weight * weight
		if other, ok := b[term]; ok {
			dot += weight * other
		}
	}
	for _, weight := range b {
		normB += weight * weight
	}
	if dot == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Float error can push the value a hair past 1
	return math.Min(sim, 1)
}
