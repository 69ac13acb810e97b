package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scrollstop/internal/browser"
	"scrollstop/internal/ledger"
	"scrollstop/internal/relay"
	"scrollstop/internal/settings"
)

// runDaemon wires the store, ledger, relay, and browser manager together and
// runs until interrupted.
func runDaemon(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	led := ledger.New(st, logger.Named("ledger"))
	hub := relay.New(logger.Named("relay"))
	defer hub.Close()

	watcher, err := relay.NewWatcher(cfg.DataDir(), hub, logger.Named("watcher"))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	loader := func(ctx context.Context) (settings.Preferences, error) {
		return st.LoadPreferences(ctx)
	}
	mgr := browser.NewManager(cfg, loader, led, hub, logger.Named("browser"))
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Shutdown()

	logger.Info("daemon running",
		zap.String("db", st.Path()),
		zap.String("signal_file", relay.SignalPath(cfg.DataDir())))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mgr.Run(ctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
