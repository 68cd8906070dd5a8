package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/counterfact/veridex/internal/backend"
	"github.com/counterfact/veridex/internal/cache"
	"github.com/counterfact/veridex/internal/dispatch"
	"github.com/counterfact/veridex/internal/model"
	"github.com/counterfact/veridex/internal/relevance"
	"github.com/counterfact/veridex/internal/source"
	"github.com/counterfact/veridex/internal/verify"
	"github.com/spf13/viper"
)

// loadConfig merges the config file (if any) over defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".veridex", "cache")
		} else {
			cfg.Cache.Enabled = false
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = key
	}
	return cfg, nil
}

// buildVerifier wires the pipeline from configuration
func buildVerifier(cfg *model.Config) (*verify.Verifier, error) {
	backends, limiter, err := buildBackends(cfg)
	if err != nil {
		return nil, err
	}

	var matcher relevance.Matcher
	if cfg.Embedding.Provider != "" {
		matcher, err = relevance.NewEmbedding(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("embedding matcher: %w", err)
		}
	}

	registry := source.NewRegistry()
	if cfg.SourcesFile != "" {
		registry, err = source.LoadRegistry(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
	}

	var verdicts *cache.Verdicts
	if cfg.Cache.Enabled {
		store := cache.NewLayered(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		verdicts = cache.NewVerdicts(store, cfg.Cache.TTL)
	}

	dispatcher := dispatch.NewDispatcher(backends, limiter)
	return verify.New(dispatcher, matcher, registry, verdicts), nil
}

// buildBackends instantiates configured connectors and their rate limits
func buildBackends(cfg *model.Config) ([]backend.Backend, *dispatch.Limiter, error) {
	limiter := dispatch.NewLimiter(2, 2, 2)

	var backends []backend.Backend
	for _, bc := range cfg.Backends {
		var b backend.Backend
		var err error
		switch bc.Kind {
		case "factcheck":
			b = backend.NewFactCheck(bc.Name, bc.Endpoint, bc.APIKey, cfg.HTTP)
		case "corpus":
			b = backend.NewCorpus(bc.Name, bc.Endpoint, bc.Domains, cfg.HTTP)
		case "static":
			b, err = backend.LoadStatic(bc.Name, bc.Fixture)
			if err != nil {
				return nil, nil, fmt.Errorf("backend %s: %w", bc.Name, err)
			}
		default:
			return nil, nil, fmt.Errorf("backend %s: unknown kind %q", bc.Name, bc.Kind)
		}
		limiter.Configure(bc.Name, bc.Rate, bc.Burst, bc.MaxInFlight)
		backends = append(backends, b)
	}
	return backends, limiter, nil
}
