package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollstop/internal/settings"
)

// fakeEffects records every host call.
type fakeEffects struct {
	warnings    []int // remaining chances per ShowWarning call
	locks       int
	countdowns  []int
	indicators  int
	redirects   []string
	unmounts    int
	lastRemain  float64
	lastChances int
}

func (f *fakeEffects) ShowWarning(site string, remaining, dailyLimit int) {
	f.warnings = append(f.warnings, remaining)
}
func (f *fakeEffects) ShowDailyLock(site string) { f.locks++ }
func (f *fakeEffects) UpdateCountdown(s int)     { f.countdowns = append(f.countdowns, s) }
func (f *fakeEffects) UpdateIndicator(remainingPx, used float64, chances int) {
	f.indicators++
	f.lastRemain = remainingPx
	f.lastChances = chances
}
func (f *fakeEffects) Redirect(url string) { f.redirects = append(f.redirects, url) }
func (f *fakeEffects) Unmount()            { f.unmounts++ }

// fakeCounter is an in-memory BlockCounter pinned to one date.
type fakeCounter struct {
	counts map[string]int
}

func (f *fakeCounter) Count(ctx context.Context, site, today string) int {
	return f.counts[site]
}
func (f *fakeCounter) Increment(ctx context.Context, site, today string) int {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[site]++
	return f.counts[site]
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func newTestSession(prefs settings.Preferences, counter *fakeCounter) (*Session, *fakeEffects) {
	fx := &fakeEffects{}
	if counter == nil {
		counter = &fakeCounter{}
	}
	s := New(prefs, "twitter.com", counter, fx, fixedNow, nil)
	return s, fx
}

func prefsWithLimit(scrollLimit, dailyLimit int) settings.Preferences {
	p := settings.Default()
	p.ScrollLimit = scrollLimit
	p.DailyBlockLimit = dailyLimit
	return p
}

func TestStaysTrackingBelowLimit(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(3000, 5), nil)
	ctx := context.Background()
	s.Start(ctx)

	for _, d := range []float64{1000, 1000, 999} {
		s.OnScrollDelta(ctx, d)
	}

	assert.Equal(t, StateTracking, s.State())
	assert.Equal(t, 2999.0, s.TotalScrolled())
	assert.Empty(t, fx.warnings)
	assert.Equal(t, 1.0, fx.lastRemain)
}

func TestCrossingLimitWarnsExactlyOnce(t *testing.T) {
	counter := &fakeCounter{}
	s, fx := newTestSession(prefsWithLimit(3000, 5), counter)
	ctx := context.Background()
	s.Start(ctx)

	for _, d := range []float64{1000, 1000, 1000} {
		s.OnScrollDelta(ctx, d)
	}

	require.Equal(t, StateWarned, s.State())
	require.Len(t, fx.warnings, 1)
	assert.Equal(t, 4, fx.warnings[0], "remaining = dailyLimit - newCount")
	assert.Equal(t, 1, counter.counts["twitter.com"])

	// Accumulator frozen: further deltas are ignored entirely.
	s.OnScrollDelta(ctx, 5000)
	s.OnScrollDelta(ctx, 1)
	assert.Equal(t, 3000.0, s.TotalScrolled())
	assert.Len(t, fx.warnings, 1)
	assert.Equal(t, 1, counter.counts["twitter.com"], "no double increment")
}

func TestIgnoresNonPositiveDeltas(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(3000, 5), nil)
	ctx := context.Background()
	s.Start(ctx)

	s.OnScrollDelta(ctx, 0)
	s.OnScrollDelta(ctx, -250)

	assert.Zero(t, s.TotalScrolled())
	assert.Equal(t, 1, fx.indicators, "only the Start seeding updates the indicator")
}

func TestDisabledSessionIsInert(t *testing.T) {
	p := prefsWithLimit(3000, 5)
	p.Enabled = false
	s, fx := newTestSession(p, nil)
	ctx := context.Background()
	s.Start(ctx)

	s.OnScrollDelta(ctx, 10000)
	assert.Zero(t, s.TotalScrolled())
	assert.Empty(t, fx.warnings)
}

func TestDailyLockAtLoad(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"twitter.com": 3}}
	s, fx := newTestSession(prefsWithLimit(3000, 3), counter)
	ctx := context.Background()
	s.Start(ctx)

	assert.Equal(t, StateDailyLocked, s.State())
	assert.Equal(t, 1, fx.locks)
	assert.Zero(t, fx.indicators, "tracking never starts when locked at load")

	// Scrolling does nothing in the locked state.
	s.OnScrollDelta(ctx, 4000)
	assert.Zero(t, s.TotalScrolled())
	assert.Equal(t, 3, counter.counts["twitter.com"])
}

func TestLastChanceShowsLockedMessage(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"twitter.com": 2}}
	s, fx := newTestSession(prefsWithLimit(1000, 3), counter)
	ctx := context.Background()
	s.Start(ctx)

	s.OnScrollDelta(ctx, 1000)
	require.Len(t, fx.warnings, 1)
	assert.Equal(t, 0, fx.warnings[0], "remaining <= 0 selects the locked message")
}

func TestCountdownRedirects(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(1000, 5), nil)
	ctx := context.Background()
	s.Start(ctx)
	s.OnScrollDelta(ctx, 1200)
	require.Equal(t, StateWarned, s.State())

	s.Tick(ctx) // 2
	s.Tick(ctx) // 1
	assert.Empty(t, fx.redirects)
	s.Tick(ctx) // 0 -> redirect
	require.Len(t, fx.redirects, 1)
	assert.Equal(t, settings.Default().RedirectURL, fx.redirects[0])
	assert.Equal(t, StateRedirecting, s.State())

	// The countdown display ran 3,2,1,0.
	assert.Equal(t, []int{3, 2, 1, 0}, fx.countdowns)
}

func TestRedirectFiresExactlyOnce(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(1000, 5), nil)
	ctx := context.Background()
	s.Start(ctx)
	s.OnScrollDelta(ctx, 1000)

	// Manual click at tick 2 of 3, then the timer keeps firing.
	s.Tick(ctx)
	s.LeaveNow()
	require.Len(t, fx.redirects, 1)

	s.Tick(ctx)
	s.Tick(ctx)
	s.LeaveNow()
	assert.Len(t, fx.redirects, 1, "pending ticks and repeat clicks are neutralized")
}

func TestLeaveNowIgnoredWhileTracking(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(3000, 5), nil)
	s.Start(context.Background())
	s.LeaveNow()
	assert.Empty(t, fx.redirects)
}

func TestDailyLockCountdownRedirects(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int{"twitter.com": 5}}
	s, fx := newTestSession(prefsWithLimit(3000, 5), counter)
	ctx := context.Background()
	s.Start(ctx)
	require.Equal(t, StateDailyLocked, s.State())

	s.Tick(ctx)
	s.Tick(ctx)
	s.Tick(ctx)
	assert.Len(t, fx.redirects, 1)
}

func TestTeardownUnmounts(t *testing.T) {
	s, fx := newTestSession(prefsWithLimit(3000, 5), nil)
	s.Start(context.Background())
	s.Teardown()
	assert.Equal(t, 1, fx.unmounts)
}
