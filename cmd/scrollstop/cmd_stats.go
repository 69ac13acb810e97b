package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"scrollstop/internal/ledger"
	"scrollstop/internal/relay"
	"scrollstop/internal/settings"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's block counts per site",
	RunE:  statsShow,
}

var statsResetCmd = &cobra.Command{
	Use:   "reset [site]",
	Short: "Reset today's block count for one site",
	Args:  cobra.ExactArgs(1),
	RunE:  statsReset,
}

func init() {
	statsCmd.AddCommand(statsResetCmd)
}

func statsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	prefs, err := st.LoadPreferences(cmd.Context())
	if err != nil {
		return err
	}

	led := ledger.New(st, logger.Named("ledger"))
	today := ledger.DateKey(time.Now())
	snap, err := led.Today(cmd.Context(), today)
	if err != nil {
		return err
	}

	fmt.Printf("Blocks today (%s), limit %d per site:\n", today, prefs.DailyBlockLimit)
	sites := append([]string(nil), prefs.BlockedSites...)
	for site := range snap.Counts {
		if !prefs.HasSite(site) {
			sites = append(sites, site)
		}
	}
	sort.Strings(sites)

	for _, site := range sites {
		count := snap.Counts[site]
		marker := ""
		if count >= prefs.DailyBlockLimit {
			marker = "  [locked until tomorrow]"
		}
		fmt.Printf("  %-24s %d/%d%s\n", site, count, prefs.DailyBlockLimit, marker)
	}
	return nil
}

func statsReset(cmd *cobra.Command, args []string) error {
	site := settings.NormalizeSite(args[0])
	if site == "" {
		return settings.ErrEmptySite
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	led := ledger.New(st, logger.Named("ledger"))
	if err := led.Reset(cmd.Context(), site, ledger.DateKey(time.Now())); err != nil {
		return err
	}

	fmt.Printf("Reset today's blocks for %s\n", site)
	if err := relay.Announce(cfg.DataDir(), relay.SignalStatsReset); err != nil {
		fmt.Println("Reset saved, but the running daemon could not be notified:", err)
	}
	return nil
}
