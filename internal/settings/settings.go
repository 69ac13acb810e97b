// Package settings defines the user preferences record and the rules for
// editing it: limit validation, site list normalization, and redirect URL
// cleanup. Preferences are durable (they live in the store) and are reloaded
// by every page session when a settings-updated signal arrives.
package settings

import (
	"errors"
	"fmt"
	"strings"
)

// Minimums enforced on save. A scroll limit under 100px would block almost
// immediately; a daily limit of 0 would lock every site permanently.
const (
	MinScrollLimit     = 100
	MinDailyBlockLimit = 1
)

var (
	// ErrDuplicateSite is returned when adding a site already on the list.
	ErrDuplicateSite = errors.New("site already added")
	// ErrEmptySite is returned when the normalized site pattern is empty.
	ErrEmptySite = errors.New("site pattern is empty")
	// ErrIndexOutOfRange is returned by RemoveSite for an invalid index.
	ErrIndexOutOfRange = errors.New("site index out of range")
)

// Preferences is the low-churn settings record, mutated only via explicit
// save. The zero value is not usable; start from Default.
type Preferences struct {
	ScrollLimit     int      `json:"scrollLimit" yaml:"scroll_limit"`
	DailyBlockLimit int      `json:"dailyBlockLimit" yaml:"daily_block_limit"`
	RedirectURL     string   `json:"redirectUrl" yaml:"redirect_url"`
	BlockedSites    []string `json:"blockedSites" yaml:"blocked_sites"`
	Enabled         bool     `json:"enabled" yaml:"enabled"`
}

// Default returns the preferences seeded on first run.
func Default() Preferences {
	return Preferences{
		ScrollLimit:     3000,
		DailyBlockLimit: 5,
		RedirectURL:     "https://notion.so",
		BlockedSites:    []string{"twitter.com", "x.com", "instagram.com"},
		Enabled:         true,
	}
}

// Validate checks the limits and redirect URL. It does not mutate.
func (p Preferences) Validate() error {
	if p.ScrollLimit < MinScrollLimit {
		return fmt.Errorf("scroll limit must be at least %d pixels, got %d", MinScrollLimit, p.ScrollLimit)
	}
	if p.DailyBlockLimit < MinDailyBlockLimit {
		return fmt.Errorf("daily block limit must be at least %d, got %d", MinDailyBlockLimit, p.DailyBlockLimit)
	}
	if strings.TrimSpace(p.RedirectURL) == "" {
		return errors.New("redirect URL is required")
	}
	return nil
}

// Clone returns a deep copy so callers can edit without aliasing the site
// list of a live session.
func (p Preferences) Clone() Preferences {
	out := p
	out.BlockedSites = append([]string(nil), p.BlockedSites...)
	return out
}

// NormalizeSite cleans a user-entered site pattern: trims, lower-cases,
// strips an http(s) scheme and a leading "www.", and drops a trailing slash
// and anything after the host.
func NormalizeSite(site string) string {
	s := strings.ToLower(strings.TrimSpace(site))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

// NormalizeRedirectURL ensures the redirect target carries a scheme. Custom
// schemes (bear://, obsidian://) pass through untouched.
func NormalizeRedirectURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}

// AddSite normalizes and appends a site pattern, rejecting duplicates.
func (p *Preferences) AddSite(site string) error {
	clean := NormalizeSite(site)
	if clean == "" {
		return ErrEmptySite
	}
	for _, existing := range p.BlockedSites {
		if existing == clean {
			return ErrDuplicateSite
		}
	}
	p.BlockedSites = append(p.BlockedSites, clean)
	return nil
}

// RemoveSite deletes the pattern at index, preserving the relative order of
// the remaining entries.
func (p *Preferences) RemoveSite(index int) error {
	if index < 0 || index >= len(p.BlockedSites) {
		return ErrIndexOutOfRange
	}
	p.BlockedSites = append(p.BlockedSites[:index], p.BlockedSites[index+1:]...)
	return nil
}

// HasSite reports whether the normalized pattern is already on the list.
func (p Preferences) HasSite(site string) bool {
	clean := NormalizeSite(site)
	for _, existing := range p.BlockedSites {
		if existing == clean {
			return true
		}
	}
	return false
}
