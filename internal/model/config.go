package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is returned when verification is started with an
// unusable configuration. Violations fail fast, never get silently clamped.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// VerifyConfig holds the tunable thresholds for one verification run.
// The weighting constants are deliberate defaults, not laws; callers are
// expected to adjust them per deployment.
type VerifyConfig struct {
	RelevanceFloor   float64 `json:"relevance_floor" yaml:"relevance_floor"`     // Items below never reach output
	TieEpsilon       float64 `json:"tie_epsilon" yaml:"tie_epsilon"`             // Relevance band treated as a tie
	CoverageWeight   float64 `json:"coverage_weight" yaml:"coverage_weight"`     // Min cumulative weight for a verdict
	MinSources       int     `json:"min_sources" yaml:"min_sources"`             // Min independent sources for a verdict
	DecisiveRatio    float64 `json:"decisive_ratio" yaml:"decisive_ratio"`       // |net|/total needed for supported/refuted
	DiversityCap     int     `json:"diversity_cap" yaml:"diversity_cap"`         // Max items per source in presented output
	PresentationSize int     `json:"presentation_size" yaml:"presentation_size"` // Presented evidence cap
	MaxEvidence      int     `json:"max_evidence" yaml:"max_evidence"`           // Dedup set cap before scoring

	PerBackendTimeout time.Duration `json:"per_backend_timeout" yaml:"per_backend_timeout"`
	OverallDeadline   time.Duration `json:"overall_deadline" yaml:"overall_deadline"`

	// Credibility mix. The three weights should sum to 1.
	PriorWeight         float64 `json:"prior_weight" yaml:"prior_weight"`
	RecencyWeight       float64 `json:"recency_weight" yaml:"recency_weight"`
	CorroborationWeight float64 `json:"corroboration_weight" yaml:"corroboration_weight"`
	RecencyHalfLife     float64 `json:"recency_half_life_days" yaml:"recency_half_life_days"`
}

// DefaultVerifyConfig returns the documented default thresholds
func DefaultVerifyConfig() VerifyConfig {
	return VerifyConfig{
		RelevanceFloor:      0.35,
		TieEpsilon:          0.02,
		CoverageWeight:      0.5,
		MinSources:          2,
		DecisiveRatio:       0.6,
		DiversityCap:        2,
		PresentationSize:    10,
		MaxEvidence:         50,
		PerBackendTimeout:   10 * time.Second,
		OverallDeadline:     30 * time.Second,
		PriorWeight:         0.5,
		RecencyWeight:       0.2,
		CorroborationWeight: 0.3,
		RecencyHalfLife:     365,
	}
}

// Validate checks the configuration before a run starts
func (c VerifyConfig) Validate() error {
	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return fmt.Errorf("%w: relevance floor %.3f outside [0,1]", ErrInvalidConfiguration, c.RelevanceFloor)
	}
	if c.TieEpsilon < 0 {
		return fmt.Errorf("%w: negative tie epsilon %.3f", ErrInvalidConfiguration, c.TieEpsilon)
	}
	if c.CoverageWeight < 0 {
		return fmt.Errorf("%w: negative coverage weight %.3f", ErrInvalidConfiguration, c.CoverageWeight)
	}
	if c.MinSources < 0 {
		return fmt.Errorf("%w: negative min sources %d", ErrInvalidConfiguration, c.MinSources)
	}
	if c.DecisiveRatio < 0 || c.DecisiveRatio > 1 {
		return fmt.Errorf("%w: decisive ratio %.3f outside [0,1]", ErrInvalidConfiguration, c.DecisiveRatio)
	}
	if c.DiversityCap < 1 {
		return fmt.Errorf("%w: diversity cap %d below 1", ErrInvalidConfiguration, c.DiversityCap)
	}
	if c.PresentationSize < 1 {
		return fmt.Errorf("%w: presentation size %d below 1", ErrInvalidConfiguration, c.PresentationSize)
	}
	if c.MaxEvidence < 1 {
		return fmt.Errorf("%w: max evidence %d below 1", ErrInvalidConfiguration, c.MaxEvidence)
	}
	if c.PerBackendTimeout <= 0 {
		return fmt.Errorf("%w: per-backend timeout %v not positive", ErrInvalidConfiguration, c.PerBackendTimeout)
	}
	if c.OverallDeadline <= 0 {
		return fmt.Errorf("%w: overall deadline %v not positive", ErrInvalidConfiguration, c.OverallDeadline)
	}
	if c.PriorWeight < 0 || c.RecencyWeight < 0 || c.CorroborationWeight < 0 {
		return fmt.Errorf("%w: negative credibility weight", ErrInvalidConfiguration)
	}
	sum := c.PriorWeight + c.RecencyWeight + c.CorroborationWeight
	if sum <= 0 {
		return fmt.Errorf("%w: credibility weights sum to %.3f", ErrInvalidConfiguration, sum)
	}
	if c.RecencyHalfLife <= 0 {
		return fmt.Errorf("%w: recency half-life %.1f days not positive", ErrInvalidConfiguration, c.RecencyHalfLife)
	}
	return nil
}

// BackendConfig describes one configured evidence backend
type BackendConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        string   `json:"kind" yaml:"kind"`                           // factcheck, corpus, static
	Endpoint    string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKey      string   `json:"-" yaml:"api_key,omitempty"`
	Domains     []string `json:"domains,omitempty" yaml:"domains,omitempty"` // corpus: trusted domains
	Fixture     string   `json:"fixture,omitempty" yaml:"fixture,omitempty"` // static: fixture file
	Rate        float64  `json:"rate" yaml:"rate"`                           // Requests per second toward this backend
	Burst       int      `json:"burst" yaml:"burst"`
	MaxInFlight int      `json:"max_in_flight" yaml:"max_in_flight"`        // Concurrent requests toward this backend
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent    string        `json:"user_agent" yaml:"user_agent"`
	MaxBodyBytes int64         `json:"max_body_bytes" yaml:"max_body_bytes"`
	HTTPProxy    string        `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty"`
	NoProxy      string        `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty"`
}

// CacheConfig holds verdict cache settings
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Dir     string        `json:"dir" yaml:"dir"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
}

// EmbeddingConfig holds optional embedding matcher settings. When the
// provider is empty the deterministic lexical matcher is used.
type EmbeddingConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // "" or "openai"
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey   string `json:"-" yaml:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ConcurrencyConfig bounds batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `json:"batch_workers" yaml:"batch_workers"`
}

// Config is the complete application configuration
type Config struct {
	Verify      VerifyConfig      `json:"verify" yaml:"verify"`
	Backends    []BackendConfig   `json:"backends" yaml:"backends"`
	HTTP        HTTPConfig        `json:"http" yaml:"http"`
	Cache       CacheConfig       `json:"cache" yaml:"cache"`
	Embedding   EmbeddingConfig   `json:"embedding" yaml:"embedding"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	SourcesFile string            `json:"sources_file" yaml:"sources_file"` // SourceProfile seed registry
}

// DefaultConfig returns the complete default configuration
func DefaultConfig() *Config {
	return &Config{
		Verify: DefaultVerifyConfig(),
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Veridex/0.1 (+https://github.com/counterfact/veridex)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // resolved to ~/.veridex/cache at startup
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
	}
}
