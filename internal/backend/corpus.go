package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/counterfact/veridex/internal/model"
)

// Corpus searches a trusted-corpus HTML search endpoint and extracts result
// snippets. Only links into the configured trusted domains become hits, and
// the endpoint is only fetched when its robots.txt allows it.
type Corpus struct {
	name       string
	endpoint   string // Search URL; the claim text is added as the q parameter
	domains    map[string]bool
	robots     *robotsGate
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewCorpus creates a trusted-corpus connector restricted to the given domains
func NewCorpus(name, endpoint string, domains []string, httpCfg model.HTTPConfig) *Corpus {
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		allowed[strings.ToLower(d)] = true
	}
	return &Corpus{
		name:       name,
		endpoint:   endpoint,
		domains:    allowed,
		robots:     newRobotsGate(httpCfg.UserAgent, httpCfg.Timeout),
		httpClient: newHTTPClient(httpCfg),
		userAgent:  httpCfg.UserAgent,
		maxBytes:   httpCfg.MaxBodyBytes,
	}
}

// Name returns the configured backend name
func (c *Corpus) Name() string { return c.name }

// Search fetches the search page for the claim and extracts trusted hits
func (c *Corpus) Search(ctx context.Context, claim model.Claim) ([]model.RawHit, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %v", ErrUnavailable, err)
	}
	q := reqURL.Query()
	q.Set("q", claim.Text)
	reqURL.RawQuery = q.Encode()

	if !c.robots.Allowed(ctx, reqURL.String()) {
		return nil, fmt.Errorf("%w: disallowed by robots.txt", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse result page: %v", ErrUnavailable, err)
	}

	return c.extractHits(doc), nil
}

// extractHits walks the result page and turns trusted outbound links into hits.
// The snippet is the text of the link's enclosing block, which on search
// result pages carries the result summary.
func (c *Corpus) extractHits(doc *html.Node) []model.RawHit {
	var hits []model.RawHit
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrValue(n, "href")
			host := trustedHost(href, c.domains)
			if host != "" && !seen[href] {
				seen[href] = true
				snippet := nodeText(blockParent(n))
				published := publishedTime(blockParent(n))
				hits = append(hits, model.RawHit{
					SourceID:    host,
					URL:         href,
					Snippet:     snippet,
					Category:    "trusted-news",
					PublishedAt: published,
				})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return hits
}

// trustedHost returns the link's host when it falls inside the trusted
// domain set, empty otherwise. Subdomains of a trusted domain count.
func trustedHost(href string, domains map[string]bool) string {
	parsed, err := url.Parse(href)
	if err != nil || !parsed.IsAbs() {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if domains[host] {
		return host
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return host
		}
	}
	return ""
}

// blockParent climbs to the nearest block-level ancestor of a link
func blockParent(n *html.Node) *html.Node {
	block := map[string]bool{
		"p": true, "li": true, "div": true, "article": true,
		"section": true, "td": true, "blockquote": true,
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && block[p.Data] {
			return p
		}
	}
	return n
}

// publishedTime reads a <time datetime="..."> inside the block, if present
func publishedTime(n *html.Node) *time.Time {
	var found *time.Time
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if found != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == "time" {
			if raw := attrValue(node, "datetime"); raw != "" {
				for _, layout := range []string{time.RFC3339, "2006-01-02"} {
					if t, err := time.Parse(layout, raw); err == nil {
						found = &t
						return
					}
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return found
}

// nodeText flattens the text content of a node
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		part := nodeText(child)
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

// attrValue returns an attribute value, empty when absent
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
