package browser

import (
	"encoding/json"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMatchURL(t *testing.T) {
	patterns := []string{"twitter.com", "instagram.com"}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"exact host", "https://twitter.com/home", "twitter.com"},
		{"subdomain", "https://mobile.twitter.com/explore", "twitter.com"},
		{"www stripped", "https://www.instagram.com/", "instagram.com"},
		{"untracked host", "https://news.ycombinator.com/", ""},
		{"suffix is not a subdomain", "https://nottwitter.com/", ""},
		{"devtools page", "devtools://devtools/bundled/inspector.html", ""},
		{"chrome internal", "chrome://newtab/", ""},
		{"blank target", "about:blank", ""},
		{"garbage", "::::", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchURL(tt.url, patterns); got != tt.want {
				t.Errorf("matchURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDrainResultDecoding(t *testing.T) {
	raw := []byte(`{"hooked":true,"deltas":[120,3.5,48],"leave":false}`)
	var res drainResult
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res.Hooked || res.Leave {
		t.Fatalf("flags wrong: %+v", res)
	}
	if len(res.Deltas) != 3 || res.Deltas[1] != 3.5 {
		t.Fatalf("deltas wrong: %v", res.Deltas)
	}

	// A fresh document has none of the hook state; every field zero-values.
	var empty drainResult
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if empty.Hooked {
		t.Fatal("missing hooked flag must decode as false")
	}
}

func TestChancesMessage(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{3, "3 chances left today."},
		{1, "1 chance left today."},
		{0, "That was your last chance; this site is locked until tomorrow."},
		{-1, "That was your last chance; this site is locked until tomorrow."},
	}
	for _, tt := range tests {
		if got := chancesMessage(tt.remaining); got != tt.want {
			t.Errorf("chancesMessage(%d) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}
