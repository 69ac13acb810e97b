package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scrollstop/internal/settings"
)

var (
	flagScrollLimit int
	flagDailyLimit  int
	flagRedirect    string
	flagEnable      bool
	flagDisable     bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the scroll budget settings",
	RunE:  settingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change limits, redirect target, or enablement",
	Long: `Changes one or more settings and notifies the running daemon.

Examples:
  scrollstop settings set --scroll-limit 5000
  scrollstop settings set --redirect notion.so --daily-limit 3
  scrollstop settings set --disable`,
	RunE: settingsSet,
}

func init() {
	settingsSetCmd.Flags().IntVar(&flagScrollLimit, "scroll-limit", 0, "scroll budget in pixels per page visit")
	settingsSetCmd.Flags().IntVar(&flagDailyLimit, "daily-limit", 0, "blocks allowed per site per day")
	settingsSetCmd.Flags().StringVar(&flagRedirect, "redirect", "", "URL to send blocked pages to")
	settingsSetCmd.Flags().BoolVar(&flagEnable, "enable", false, "turn enforcement on")
	settingsSetCmd.Flags().BoolVar(&flagDisable, "disable", false, "turn enforcement off")
	settingsCmd.AddCommand(settingsSetCmd)
}

func settingsShow(cmd *cobra.Command, args []string) error {
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

	state := "enabled"
	if !prefs.Enabled {
		state = "disabled"
	}
	fmt.Printf("Enforcement:       %s\n", state)
	fmt.Printf("Scroll limit:      %d px per visit\n", prefs.ScrollLimit)
	fmt.Printf("Daily block limit: %d per site\n", prefs.DailyBlockLimit)
	fmt.Printf("Redirect to:       %s\n", prefs.RedirectURL)
	fmt.Printf("Blocked sites:     %d\n", len(prefs.BlockedSites))
	for i, site := range prefs.BlockedSites {
		fmt.Printf("  %d. %s\n", i+1, site)
	}
	return nil
}

func settingsSet(cmd *cobra.Command, args []string) error {
	if flagEnable && flagDisable {
		return fmt.Errorf("--enable and --disable are mutually exclusive")
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

	if cmd.Flags().Changed("scroll-limit") {
		prefs.ScrollLimit = flagScrollLimit
	}
	if cmd.Flags().Changed("daily-limit") {
		prefs.DailyBlockLimit = flagDailyLimit
	}
	if cmd.Flags().Changed("redirect") {
		prefs.RedirectURL = settings.NormalizeRedirectURL(flagRedirect)
	}
	if flagEnable {
		prefs.Enabled = true
	}
	if flagDisable {
		prefs.Enabled = false
	}

	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := st.SavePreferences(cmd.Context(), prefs); err != nil {
		return err
	}
	fmt.Println("Settings saved.")
	return announceSave(cfg.DataDir())
}
