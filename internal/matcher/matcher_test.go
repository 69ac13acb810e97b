package matcher

import "testing"

func TestMatch(t *testing.T) {
	patterns := []string{"twitter.com", "x.com", "instagram.com"}

	tests := []struct {
		name     string
		hostname string
		patterns []string
		want     string
	}{
		{"exact match", "twitter.com", patterns, "twitter.com"},
		{"www stripped from host", "www.twitter.com", patterns, "twitter.com"},
		{"subdomain", "mobile.twitter.com", patterns, "twitter.com"},
		{"nested subdomain", "a.b.instagram.com", patterns, "instagram.com"},
		{"case insensitive", "TWITTER.COM", patterns, "twitter.com"},
		{"www on pattern side", "foo.com", []string{"www.Foo.com"}, "foo.com"},
		{"no match", "example.com", patterns, ""},
		{"suffix but not subdomain", "nottwitter.com", patterns, ""},
		{"first pattern wins", "x.com", []string{"x.com", "x.com"}, "x.com"},
		{"empty host", "", patterns, ""},
		{"empty patterns", "twitter.com", nil, ""},
		{"blank pattern skipped", "x.com", []string{"", "x.com"}, "x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.hostname, tt.patterns)
			if got != tt.want {
				t.Fatalf("Match(%q) = %q, want %q", tt.hostname, got, tt.want)
			}
		})
	}
}

func TestMatchListOrder(t *testing.T) {
	// A host that is a subdomain of a later pattern but equal to an earlier
	// one must key on the earlier pattern.
	got := Match("news.ycombinator.com", []string{"ycombinator.com", "news.ycombinator.com"})
	if got != "ycombinator.com" {
		t.Fatalf("Match = %q, want first pattern in list order", got)
	}
}
