package dispatch

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://News.Example.ORG/Articles/1",
			want: "https://news.example.org/Articles/1",
		},
		{
			name: "strips fragment",
			raw:  "https://news.example.org/a#section-2",
			want: "https://news.example.org/a",
		},
		{
			name: "strips default https port",
			raw:  "https://news.example.org:443/a",
			want: "https://news.example.org/a",
		},
		{
			name: "strips default http port",
			raw:  "http://news.example.org:80/a",
			want: "http://news.example.org/a",
		},
		{
			name: "keeps non-default port",
			raw:  "https://news.example.org:8443/a",
			want: "https://news.example.org:8443/a",
		},
		{
			name: "strips tracking params but keeps real ones",
			raw:  "https://news.example.org/a?utm_source=x&id=7&fbclid=abc",
			want: "https://news.example.org/a?id=7",
		},
		{
			name: "trims trailing slash",
			raw:  "https://news.example.org/a/",
			want: "https://news.example.org/a",
		},
		{
			name: "keeps bare root path",
			raw:  "https://news.example.org/",
			want: "https://news.example.org/",
		},
		{
			name: "trims surrounding whitespace",
			raw:  "  https://news.example.org/a  ",
			want: "https://news.example.org/a",
		},
		{
			name: "relative url is unusable",
			raw:  "/just/a/path",
			want: "",
		},
		{
			name: "empty url is unusable",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.raw); got != tt.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalURL_SyndicatedCopiesCollide(t *testing.T) {
	a := CanonicalURL("https://news.example.org/a?utm_source=feed&utm_medium=rss")
	b := CanonicalURL("https://NEWS.example.org/a/#top")
	if a == "" || a != b {
		t.Errorf("syndicated variants should canonicalize equal: %q vs %q", a, b)
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash("  Drone   deployment\tCONFIRMED by observers. ")
	b := ContentHash("drone deployment confirmed by observers.")
	if a != b {
		t.Errorf("whitespace and case variants should hash equal: %s vs %s", a, b)
	}

	c := ContentHash("a different snippet entirely")
	if a == c {
		t.Error("distinct snippets should not collide")
	}
}

func TestDedupKey(t *testing.T) {
	if got := dedupKey("https://a/b", "hash"); got != "https://a/b" {
		t.Errorf("url should win: %q", got)
	}
	if got := dedupKey("", "hash"); got != "hash" {
		t.Errorf("hash should back up a missing url: %q", got)
	}
}
