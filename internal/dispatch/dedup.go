package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Tracking parameters stripped during URL canonicalization so syndicated
// copies of the same article dedup to one item.
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "fbclid": true, "gclid": true,
	"ref": true,
}

// CanonicalURL normalizes a URL into the dedup key form: lowercased scheme
// and host, default ports and fragments dropped, tracking parameters
// removed, trailing slash trimmed. Returns empty for unusable URLs.
func CanonicalURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ""
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	switch {
	case parsed.Scheme == "http" && strings.HasSuffix(parsed.Host, ":80"):
		parsed.Host = strings.TrimSuffix(parsed.Host, ":80")
	case parsed.Scheme == "https" && strings.HasSuffix(parsed.Host, ":443"):
		parsed.Host = strings.TrimSuffix(parsed.Host, ":443")
	}

	query := parsed.Query()
	for param := range query {
		if trackingParams[strings.ToLower(param)] {
			query.Del(param)
		}
	}
	parsed.RawQuery = query.Encode()

	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}

// ContentHash hashes normalized snippet text; the dedup key of last resort
// for hits without a usable URL.
func ContentHash(snippet string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(snippet)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// dedupKey picks the canonical URL when available, the content hash otherwise
func dedupKey(canonicalURL, contentHash string) string {
	if canonicalURL != "" {
		return canonicalURL
	}
	return contentHash
}

// evidenceID derives a stable item id from the dedup key
func evidenceID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
