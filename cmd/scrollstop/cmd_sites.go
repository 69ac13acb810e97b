package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scrollstop/internal/relay"
	"scrollstop/internal/settings"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage the blocked site list",
	RunE:  sitesList,
}

var sitesAddCmd = &cobra.Command{
	Use:   "add [site...]",
	Short: "Add sites to the blocked list",
	Long: `Adds one or more site patterns. Input is normalized: scheme, leading
"www.", and any path are stripped, so "HTTPS://WWW.Foo.com/bar" becomes
"foo.com". A pattern matches the site and all of its subdomains.`,
	Args: cobra.MinimumNArgs(1),
	RunE: sitesAdd,
}

var sitesRemoveCmd = &cobra.Command{
	Use:   "remove [number]",
	Short: "Remove a site by its list number",
	Args:  cobra.ExactArgs(1),
	RunE:  sitesRemove,
}

func init() {
	sitesCmd.AddCommand(sitesAddCmd)
	sitesCmd.AddCommand(sitesRemoveCmd)
}

func sitesList(cmd *cobra.Command, args []string) error {
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
	if len(prefs.BlockedSites) == 0 {
		fmt.Println("No blocked sites. Add one with: scrollstop sites add twitter.com")
		return nil
	}
	for i, site := range prefs.BlockedSites {
		fmt.Printf("%d. %s\n", i+1, site)
	}
	return nil
}

func sitesAdd(cmd *cobra.Command, args []string) error {
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

	added := 0
	for _, raw := range args {
		if err := prefs.AddSite(raw); err != nil {
			if errors.Is(err, settings.ErrDuplicateSite) {
				fmt.Printf("%s is already blocked\n", settings.NormalizeSite(raw))
				continue
			}
			return fmt.Errorf("add %q: %w", raw, err)
		}
		fmt.Printf("Blocked %s\n", prefs.BlockedSites[len(prefs.BlockedSites)-1])
		added++
	}
	if added == 0 {
		return nil
	}

	if err := st.SavePreferences(cmd.Context(), prefs); err != nil {
		return err
	}
	return announceSave(cfg.DataDir())
}

func sitesRemove(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid site number %q", args[0])
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

	prefs, err := st.LoadPreferences(cmd.Context())
	if err != nil {
		return err
	}

	// Display numbering is 1-based.
	index := n - 1
	if index < 0 || index >= len(prefs.BlockedSites) {
		return fmt.Errorf("site number %d out of range (1-%d)", n, len(prefs.BlockedSites))
	}
	removed := prefs.BlockedSites[index]
	if err := prefs.RemoveSite(index); err != nil {
		return err
	}

	if err := st.SavePreferences(cmd.Context(), prefs); err != nil {
		return err
	}
	fmt.Printf("Unblocked %s\n", removed)
	return announceSave(cfg.DataDir())
}

func announceSave(dataDir string) error {
	if err := relay.Announce(dataDir, relay.SignalSettingsUpdated); err != nil {
		fmt.Println("Saved, but the running daemon could not be notified:", err)
	}
	return nil
}
