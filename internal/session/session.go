// Package session holds the per-page scroll-tracking and blocking state
// machine. A Session is an explicit state-tagged value driven by three
// inputs: scroll deltas, one-second countdown ticks, and the explicit
// leave-now control. Side effects go through the Effects interface so the
// machine is testable without a browser or real timers.
//
// Every Session is owned by exactly one goroutine (the page adapter's event
// loop); methods are not safe for concurrent use and don't need to be.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scrollstop/internal/ledger"
	"scrollstop/internal/settings"
)

// State tags the machine's position.
type State int

const (
	// StateTracking accumulates scroll distance below the budget.
	StateTracking State = iota
	// StateWarned means the budget was spent and the interstitial is up.
	StateWarned
	// StateDailyLocked is the terminal entry state when today's block count
	// already met the daily limit at page load.
	StateDailyLocked
	// StateRedirecting means the one-shot redirect has fired.
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateTracking:
		return "tracking"
	case StateWarned:
		return "warned"
	case StateDailyLocked:
		return "daily_locked"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// CountdownSeconds is the fixed interstitial countdown: one tick per second,
// mirrored by the host as a shrinking proportional bar.
const CountdownSeconds = 3

// Effects is the host surface the machine drives. Implementations mount
// overlays in a real page; tests record calls.
type Effects interface {
	// ShowWarning mounts the scroll-limit interstitial. remaining is the
	// number of chances left today; <= 0 means the host shows the
	// locked-for-today variant of the message.
	ShowWarning(siteKey string, remaining, dailyLimit int)
	// ShowDailyLock mounts the locked-until-tomorrow interstitial.
	ShowDailyLock(siteKey string)
	// UpdateCountdown reflects the seconds left on a mounted interstitial.
	UpdateCountdown(secondsLeft int)
	// UpdateIndicator refreshes the persistent budget indicator.
	UpdateIndicator(remainingPx float64, usedFraction float64, chancesLeft int)
	// Redirect navigates the page away. Called at most once per session.
	Redirect(url string)
	// Unmount removes any overlay and indicator at teardown.
	Unmount()
}

// BlockCounter is the slice of the daily ledger a session needs.
type BlockCounter interface {
	Count(ctx context.Context, site, today string) int
	Increment(ctx context.Context, site, today string) int
}

// Session is the per-page state. It is rebuilt wholesale on every settings
// reload rather than mutated piecemeal.
type Session struct {
	prefs   settings.Preferences
	siteKey string
	counter BlockCounter
	fx      Effects
	now     func() time.Time
	log     *zap.Logger

	state         State
	totalScrolled float64
	blockCount    int
	countdown     int
	redirected    bool
}

// New builds a session for a tracked page. siteKey is the canonical key the
// page matched; prefs is the snapshot loaded at session start.
func New(prefs settings.Preferences, siteKey string, counter BlockCounter, fx Effects, now func() time.Time, log *zap.Logger) *Session {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		prefs:   prefs,
		siteKey: siteKey,
		counter: counter,
		fx:      fx,
		now:     now,
		log:     log,
		state:   StateTracking,
	}
}

// Start seeds the session from the ledger. A site already at the daily limit
// goes straight to DailyLocked: the interstitial mounts, the countdown arms,
// and scroll tracking never begins for this session.
func (s *Session) Start(ctx context.Context) {
	s.blockCount = s.counter.Count(ctx, s.siteKey, ledger.DateKey(s.now()))

	if s.blockCount >= s.prefs.DailyBlockLimit {
		s.state = StateDailyLocked
		s.countdown = CountdownSeconds
		s.fx.ShowDailyLock(s.siteKey)
		s.fx.UpdateCountdown(s.countdown)
		s.log.Info("site locked for the day",
			zap.String("site", s.siteKey), zap.Int("blocks", s.blockCount))
		return
	}

	s.fx.UpdateIndicator(float64(s.prefs.ScrollLimit), 0, s.chancesLeft())
}

// State returns the current state tag.
func (s *Session) State() State { return s.state }

// TotalScrolled returns the accumulated scroll magnitude.
func (s *Session) TotalScrolled() float64 { return s.totalScrolled }

// OnScrollDelta consumes one scroll event's absolute distance. Non-positive
// deltas are ignored. Once the session leaves Tracking the accumulator is
// frozen and this is a no-op, so re-entrant deltas while blocked do nothing.
func (s *Session) OnScrollDelta(ctx context.Context, delta float64) {
	if delta <= 0 || s.redirected || s.state != StateTracking {
		return
	}
	if !s.prefs.Enabled || s.siteKey == "" {
		return
	}

	s.totalScrolled += delta

	remaining := float64(s.prefs.ScrollLimit) - s.totalScrolled
	if remaining < 0 {
		remaining = 0
	}
	used := s.totalScrolled / float64(s.prefs.ScrollLimit)
	if used > 1 {
		used = 1
	}
	s.fx.UpdateIndicator(remaining, used, s.chancesLeft())

	if s.totalScrolled >= float64(s.prefs.ScrollLimit) {
		s.block(ctx)
	}
}

// block fires the Tracking -> Warned transition exactly once.
func (s *Session) block(ctx context.Context) {
	s.blockCount = s.counter.Increment(ctx, s.siteKey, ledger.DateKey(s.now()))
	s.state = StateWarned
	s.countdown = CountdownSeconds

	remaining := s.prefs.DailyBlockLimit - s.blockCount
	s.fx.ShowWarning(s.siteKey, remaining, s.prefs.DailyBlockLimit)
	s.fx.UpdateCountdown(s.countdown)
	s.log.Info("scroll budget spent",
		zap.String("site", s.siteKey),
		zap.Float64("scrolled", s.totalScrolled),
		zap.Int("blocks_today", s.blockCount),
		zap.Int("chances_left", remaining))
}

// Tick advances the countdown by one second. Only meaningful while an
// interstitial is up; the redirect firing neutralizes all later ticks.
func (s *Session) Tick(ctx context.Context) {
	if s.redirected || (s.state != StateWarned && s.state != StateDailyLocked) {
		return
	}
	s.countdown--
	if s.countdown < 0 {
		s.countdown = 0
	}
	s.fx.UpdateCountdown(s.countdown)
	if s.countdown <= 0 {
		s.redirect()
	}
}

// LeaveNow is the explicit user control on the interstitial.
func (s *Session) LeaveNow() {
	if s.state != StateWarned && s.state != StateDailyLocked {
		return
	}
	s.redirect()
}

// redirect is one-shot: first trigger wins, whether it was the countdown or
// the leave-now control; the loser is a no-op.
func (s *Session) redirect() {
	if s.redirected {
		return
	}
	s.redirected = true
	s.state = StateRedirecting
	s.fx.Redirect(s.prefs.RedirectURL)
}

// Teardown unmounts host artifacts. Called when a reload signal arrives or
// the page goes away; the owner then rebuilds a fresh session if needed.
func (s *Session) Teardown() {
	s.fx.Unmount()
}

func (s *Session) chancesLeft() int {
	left := s.prefs.DailyBlockLimit - s.blockCount
	if left < 0 {
		return 0
	}
	return left
}
