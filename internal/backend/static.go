package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/counterfact/veridex/internal/model"
)

// Static serves hits from a JSON fixture file. Used for offline runs and
// as the reference connector in tests. The fixture maps claim text (or a
// lowercased substring of it) to hits.
type Static struct {
	name string
	hits map[string][]model.RawHit
}

// NewStatic creates a static connector from an in-memory fixture map
func NewStatic(name string, hits map[string][]model.RawHit) *Static {
	normalized := make(map[string][]model.RawHit, len(hits))
	for key, value := range hits {
		normalized[strings.ToLower(key)] = value
	}
	return &Static{name: name, hits: normalized}
}

// LoadStatic reads a fixture file into a static connector
func LoadStatic(name, path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var hits map[string][]model.RawHit
	if err := json.Unmarshal(data, &hits); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return NewStatic(name, hits), nil
}

// Name returns the configured backend name
func (s *Static) Name() string { return s.name }

// Search returns fixture hits whose key matches the claim text
func (s *Static) Search(ctx context.Context, claim model.Claim) ([]model.RawHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	text := strings.ToLower(claim.Text)
	if hits, ok := s.hits[text]; ok {
		return hits, nil
	}
	for key, hits := range s.hits {
		if strings.Contains(text, key) {
			return hits, nil
		}
	}
	return nil, nil
}
