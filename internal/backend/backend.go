package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/counterfact/veridex/internal/model"
)

// Sentinel errors a connector may fail with. The dispatcher drops the
// failing backend's contribution and marks the run partial; neither error
// ever fails the whole verification.
var (
	ErrUnavailable = errors.New("backend unavailable")
	ErrTimeout     = errors.New("backend timeout")
)

// Backend is the capability interface for one evidence source. New sources
// are added by implementing Search; the dispatcher never knows concrete
// connector types.
type Backend interface {
	// Name identifies the backend in configuration, rate limiting and
	// run diagnostics.
	Name() string

	// Search returns raw hits bearing on the claim. Implementations fail
	// with ErrTimeout or ErrUnavailable (possibly wrapped).
	Search(ctx context.Context, claim model.Claim) ([]model.RawHit, error)
}

// Retryable reports whether a search error is worth one more attempt
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// newHTTPClient builds the shared outbound client the connectors use
func newHTTPClient(cfg model.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: proxyFunc(cfg),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return errors.New("stopped after 3 redirects")
			}
			return nil
		},
	}
}

// proxyFunc honors explicit proxy settings and falls back to the environment
func proxyFunc(cfg model.HTTPConfig) func(*http.Request) (*url.URL, error) {
	if cfg.HTTPProxy == "" && cfg.HTTPSProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && cfg.HTTPSProxy != "" {
			return url.Parse(cfg.HTTPSProxy)
		}
		if cfg.HTTPProxy != "" {
			return url.Parse(cfg.HTTPProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
