package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scrollstop/internal/relay"
	"scrollstop/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive settings editor",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
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

	announce := func() error {
		return relay.Announce(cfg.DataDir(), relay.SignalSettingsUpdated)
	}
	model := tui.New(st, announce, prefs)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
