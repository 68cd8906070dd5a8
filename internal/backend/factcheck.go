package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/counterfact/veridex/internal/model"
)

// FactCheck queries a ClaimReview-style fact-check database over HTTP.
// The endpoint is expected to accept a `query` parameter and return the
// usual claims/claimReview JSON shape.
type FactCheck struct {
	name       string
	endpoint   string
	apiKey     string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFactCheck creates a fact-check connector
func NewFactCheck(name, endpoint, apiKey string, httpCfg model.HTTPConfig) *FactCheck {
	return &FactCheck{
		name:       name,
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: newHTTPClient(httpCfg),
		userAgent:  httpCfg.UserAgent,
		maxBytes:   httpCfg.MaxBodyBytes,
	}
}

// Name returns the configured backend name
func (f *FactCheck) Name() string { return f.name }

// claimReviewResponse mirrors the ClaimReview API wire format
type claimReviewResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			Publisher struct {
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
			ReviewDate    string `json:"reviewDate"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search queries the fact-check database for reviews of the claim
func (f *FactCheck) Search(ctx context.Context, claim model.Claim) ([]model.RawHit, error) {
	reqURL, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %v", ErrUnavailable, err)
	}
	q := reqURL.Query()
	q.Set("query", claim.Text)
	if f.apiKey != "" {
		q.Set("key", f.apiKey)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	var parsed claimReviewResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	var hits []model.RawHit
	for _, c := range parsed.Claims {
		for _, review := range c.ClaimReview {
			snippet := review.Title
			if snippet == "" {
				snippet = c.Text
			}
			if review.TextualRating != "" {
				snippet = fmt.Sprintf("%s Rating: %s.", snippet, review.TextualRating)
			}
			hit := model.RawHit{
				SourceID: review.Publisher.Site,
				URL:      review.URL,
				Snippet:  snippet,
				Stance:   stanceFromRating(review.TextualRating),
				Category: "fact-check",
			}
			if t, err := time.Parse(time.RFC3339, review.ReviewDate); err == nil {
				hit.PublishedAt = &t
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// stanceFromRating maps a textual fact-check rating to a stance. Unmapped
// ratings fall through to the polarity heuristic downstream.
func stanceFromRating(rating string) model.Stance {
	if rating == "" {
		return ""
	}
	return InferStance(rating)
}

// classifyTransportError maps a transport failure to a sentinel error
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
