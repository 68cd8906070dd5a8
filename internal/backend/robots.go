package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsGate caches per-host robots.txt verdicts for the corpus connector.
// A host whose robots.txt cannot be fetched is allowed; a missing file
// (404) allows everything per convention.
type robotsGate struct {
	mu         sync.RWMutex
	byHost     map[string]*robotstxt.RobotsData
	httpClient *http.Client
	userAgent  string
}

func newRobotsGate(userAgent string, timeout time.Duration) *robotsGate {
	return &robotsGate{
		byHost:     make(map[string]*robotstxt.RobotsData),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Allowed reports whether the URL may be fetched under the host's robots.txt
func (g *robotsGate) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	data, err := g.robotsFor(ctx, parsed.Scheme, parsed.Host)
	if err != nil {
		return true
	}
	return data.TestAgent(parsed.Path, g.userAgent)
}

func (g *robotsGate) robotsFor(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	g.mu.RLock()
	data, ok := g.byHost[host]
	g.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		data, _ = robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	} else {
		data, err = robotstxt.FromResponse(resp)
		if err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	g.byHost[host] = data
	g.mu.Unlock()
	return data, nil
}
