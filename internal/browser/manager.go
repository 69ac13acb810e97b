// Package browser attaches the scroll budget machinery to a real Chrome over
// the DevTools protocol. The manager discovers open tabs, matches their hosts
// against the blocked-site list, and runs one page watch per tracked tab. The
// watch owns a session state machine and translates its effects into
// injected-JS overlays.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scrollstop/internal/config"
	"scrollstop/internal/matcher"
	"scrollstop/internal/relay"
	"scrollstop/internal/session"
	"scrollstop/internal/settings"
)

// PrefsLoader fetches the current preferences snapshot from the store.
type PrefsLoader func(ctx context.Context) (settings.Preferences, error)

// Manager owns the browser connection and the set of live page watches.
type Manager struct {
	cfg     *config.Config
	loader  PrefsLoader
	counter session.BlockCounter
	relay   *relay.Relay
	log     *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	watches map[proto.TargetTargetID]*pageWatch
	prefs   settings.Preferences
}

// NewManager builds a manager. Start must be called before Run.
func NewManager(cfg *config.Config, loader PrefsLoader, counter session.BlockCounter, r *relay.Relay, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:     cfg,
		loader:  loader,
		counter: counter,
		relay:   r,
		log:     log,
		watches: make(map[proto.TargetTargetID]*pageWatch),
	}
}

// Start connects to an existing Chrome or launches a new one, and loads the
// initial preferences snapshot.
func (m *Manager) Start(ctx context.Context) error {
	prefs, err := m.loader(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	controlURL := m.cfg.Browser.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(m.cfg.Browser.Headless)
		if m.cfg.Browser.Bin != "" {
			launch = launch.Bin(m.cfg.Browser.Bin)
		}
		controlURL, err = launch.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.mu.Lock()
	m.browser = browser
	m.prefs = prefs
	m.mu.Unlock()

	m.log.Info("browser connected",
		zap.String("control_url", controlURL),
		zap.Int("blocked_sites", len(prefs.BlockedSites)))
	return nil
}

// Run drives discovery and reload handling until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.discoveryLoop(ctx) })
	g.Go(func() error { return m.reloadLoop(ctx) })
	return g.Wait()
}

// Shutdown tears down every watch and closes the browser connection.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	watches := make([]*pageWatch, 0, len(m.watches))
	for id, w := range m.watches {
		watches = append(watches, w)
		delete(m.watches, id)
	}
	browser := m.browser
	m.browser = nil
	m.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
	if browser != nil {
		_ = browser.Close()
	}
}

// discoveryLoop polls open tabs and spawns a watch for every tracked host
// that does not already have one.
func (m *Manager) discoveryLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.scanPages(ctx)
		}
	}
}

func (m *Manager) scanPages(ctx context.Context) {
	m.mu.Lock()
	browser := m.browser
	prefs := m.prefs.Clone()
	m.mu.Unlock()
	if browser == nil || !prefs.Enabled {
		return
	}

	pages, err := browser.Pages()
	if err != nil {
		m.log.Warn("page listing failed", zap.Error(err))
		return
	}

	for _, page := range pages {
		info, err := page.Info()
		if err != nil {
			continue
		}
		siteKey := matchURL(info.URL, prefs.BlockedSites)
		if siteKey == "" {
			continue
		}

		m.mu.Lock()
		if _, exists := m.watches[page.TargetID]; exists {
			m.mu.Unlock()
			continue
		}
		w := newPageWatch(m, page, siteKey, prefs)
		m.watches[page.TargetID] = w
		m.mu.Unlock()

		m.log.Info("tracking page",
			zap.String("watch", w.id),
			zap.String("site", siteKey),
			zap.String("url", info.URL))
		go w.run(ctx)
	}
}

// reloadLoop reacts to settings-updated and stats-reset signals. Both are
// handled identically: drop every watch and reload preferences; discovery
// rebuilds sessions against the fresh snapshot.
func (m *Manager) reloadLoop(ctx context.Context) error {
	signals, cancel := m.relay.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			m.log.Info("reload signal", zap.String("signal", string(sig)))
			m.reload(ctx)
		}
	}
}

func (m *Manager) reload(ctx context.Context) {
	prefs, err := m.loader(ctx)
	if err != nil {
		m.log.Warn("preferences reload failed, keeping previous snapshot", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.prefs = prefs
	watches := make([]*pageWatch, 0, len(m.watches))
	for id, w := range m.watches {
		watches = append(watches, w)
		delete(m.watches, id)
	}
	m.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
}

// forget removes a finished watch so discovery can re-attach to the target.
func (m *Manager) forget(id proto.TargetTargetID, w *pageWatch) {
	m.mu.Lock()
	if cur, ok := m.watches[id]; ok && cur == w {
		delete(m.watches, id)
	}
	m.mu.Unlock()
}

// matchURL extracts the hostname from a page URL and matches it against the
// blocked-site patterns. Non-http(s) URLs never match.
func matchURL(rawURL string, patterns []string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	return matcher.Match(host, patterns)
}
