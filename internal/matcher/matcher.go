// Package matcher decides whether a page's hostname belongs to a tracked
// site and resolves it to the canonical key used by the daily ledger.
package matcher

import "strings"

// Normalize lower-cases a host or pattern and strips a leading "www.".
func Normalize(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	return host
}

// Match returns the canonical site key for hostname, or "" when the host
// matches none of the patterns. A host matches a pattern when they are equal
// or the host is a proper subdomain of the pattern (dot-suffix match), after
// normalizing both sides. The first matching pattern in list order wins and
// becomes the ledger key, so "m.twitter.com" and "twitter.com" share one
// budget.
func Match(hostname string, patterns []string) string {
	host := Normalize(hostname)
	if host == "" {
		return ""
	}
	for _, pattern := range patterns {
		p := Normalize(pattern)
		if p == "" {
			continue
		}
		if host == p || strings.HasSuffix(host, "."+p) {
			return p
		}
	}
	return ""
}
