package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scrollstop/internal/session"
	"scrollstop/internal/settings"
)

// pageWatch runs one tracked tab. It installs the scroll hook, drains deltas
// into the session machine on a poll ticker, and advances the interstitial
// countdown on a one-second ticker. The watch goroutine is the session's
// sole owner, so the machine needs no locking.
type pageWatch struct {
	id     string
	mgr    *Manager
	page   *rod.Page
	sess   *session.Session
	log    *zap.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// drainResult mirrors the drain script's return value.
type drainResult struct {
	Hooked bool      `json:"hooked"`
	Deltas []float64 `json:"deltas"`
	Leave  bool      `json:"leave"`
}

func newPageWatch(mgr *Manager, page *rod.Page, siteKey string, prefs settings.Preferences) *pageWatch {
	w := &pageWatch{
		id:     uuid.NewString(),
		mgr:    mgr,
		page:   page,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	w.log = mgr.log.With(zap.String("watch", w.id), zap.String("site", siteKey))
	fx := &pageEffects{watch: w}
	w.sess = session.New(prefs, siteKey, mgr.counter, fx, nil, w.log)
	return w
}

// stop asks the watch loop to exit and waits for it.
func (w *pageWatch) stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.doneCh
}

func (w *pageWatch) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.mgr.forget(w.page.TargetID, w)
	defer w.sess.Teardown()

	if err := w.install(ctx); err != nil {
		w.log.Warn("scroll hook install failed", zap.Error(err))
		return
	}
	w.sess.Start(ctx)

	prevState := w.sess.State()
	drain := time.NewTicker(w.mgr.cfg.PollInterval())
	defer drain.Stop()
	countdown := time.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-countdown.C:
			w.sess.Tick(ctx)
		case <-drain.C:
			res, err := w.drain(ctx)
			if err != nil {
				w.log.Debug("page drain failed, detaching", zap.Error(err))
				return
			}
			if !res.Hooked {
				// The document was replaced by a navigation. Exit and let
				// discovery decide whether the new page is still tracked.
				w.log.Debug("scroll hook gone, page navigated")
				return
			}
			if res.Leave {
				w.sess.LeaveNow()
			}
			for _, d := range res.Deltas {
				w.sess.OnScrollDelta(ctx, d)
			}
			// Entering a blocked state restarts the countdown ticker so the
			// first displayed second lasts a full second.
			if cur := w.sess.State(); cur != prevState {
				if cur == session.StateWarned || cur == session.StateDailyLocked {
					countdown.Reset(time.Second)
				}
				prevState = cur
			}
		}
	}
}

func (w *pageWatch) install(ctx context.Context) error {
	_, err := w.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           hookJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	return err
}

func (w *pageWatch) drain(ctx context.Context) (drainResult, error) {
	res, err := w.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           drainJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return drainResult{}, fmt.Errorf("drain scroll buffer: %w", err)
	}
	if res == nil {
		return drainResult{}, fmt.Errorf("drain scroll buffer: empty result")
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return drainResult{}, fmt.Errorf("marshal drain result: %w", err)
	}
	var out drainResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return drainResult{}, fmt.Errorf("decode drain result: %w", err)
	}
	return out, nil
}

// eval runs an effect script with arguments, swallowing errors. Effects are
// best-effort: a page that refuses an overlay still gets redirected.
func (w *pageWatch) eval(js string, args ...interface{}) {
	_, err := w.page.Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		w.log.Debug("effect delivery failed", zap.Error(err))
	}
}

// pageEffects renders session effects into the live page.
type pageEffects struct {
	watch *pageWatch
}

func (e *pageEffects) ShowWarning(siteKey string, remaining, dailyLimit int) {
	msg := fmt.Sprintf("You've hit your scroll limit on %s. %s",
		siteKey, chancesMessage(remaining))
	e.watch.eval(overlayJS, "warn", siteKey, msg, session.CountdownSeconds)
}

func (e *pageEffects) ShowDailyLock(siteKey string) {
	msg := fmt.Sprintf("%s is done for today. See you tomorrow.", siteKey)
	e.watch.eval(overlayJS, "lock", siteKey, msg, session.CountdownSeconds)
}

func (e *pageEffects) UpdateCountdown(secondsLeft int) {
	e.watch.eval(countdownJS, secondsLeft, session.CountdownSeconds)
}

func (e *pageEffects) UpdateIndicator(remainingPx, usedFraction float64, chancesLeft int) {
	e.watch.eval(indicatorJS, remainingPx, usedFraction, chancesLeft)
}

func (e *pageEffects) Redirect(url string) {
	w := e.watch
	err := w.page.Timeout(w.mgr.cfg.NavigationTimeout()).Navigate(url)
	if err != nil {
		w.log.Warn("redirect failed", zap.String("url", url), zap.Error(err))
		return
	}
	w.log.Info("redirected", zap.String("url", url))
}

func (e *pageEffects) Unmount() {
	e.watch.eval(unmountJS)
}

// chancesMessage phrases the remaining daily chances for the interstitial.
func chancesMessage(remaining int) string {
	switch {
	case remaining <= 0:
		return "That was your last chance; this site is locked until tomorrow."
	case remaining == 1:
		return "1 chance left today."
	default:
		return fmt.Sprintf("%d chances left today.", remaining)
	}
}
