package relevance

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/counterfact/veridex/internal/model"
)

// Embedding scores relevance with embedding cosine similarity through the
// OpenAI API. Optional; runs that need strict reproducibility use the
// lexical matcher instead.
type Embedding struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedding creates an embedding matcher from configuration
func NewEmbedding(cfg model.EmbeddingConfig) (*Embedding, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding matcher requires an API key")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	embModel := openai.SmallEmbedding3
	if cfg.Model != "" {
		embModel = openai.EmbeddingModel(cfg.Model)
	}

	return &Embedding{
		client: openai.NewClientWithConfig(clientCfg),
		model:  embModel,
	}, nil
}

// Name returns the matcher name
func (e *Embedding) Name() string { return "embedding" }

// Score embeds the claim together with all snippets in one request and
// returns cosine similarity against the claim vector, mapped to [0,1].
func (e *Embedding) Score(ctx context.Context, claimText string, snippets []string) ([]float64, error) {
	if len(snippets) == 0 {
		return nil, nil
	}

	input := make([]string, 0, len(snippets)+1)
	input = append(input, claimText)
	input = append(input, snippets...)

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(input), len(resp.Data))
	}

	claimVec := resp.Data[0].Embedding
	scores := make([]float64, len(snippets))
	for i := range snippets {
		scores[i] = cosineVec(claimVec, resp.Data[i+1].Embedding)
	}
	return scores, nil
}

// cosineVec maps cosine similarity from [-1,1] to [0,1]
func cosineVec(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min((sim+1)/2, 1))
}
