// Package tui is a terminal settings editor: limits, redirect target, and
// the blocked site list in one screen. Edits are staged locally and written
// back in one save, which also announces the change to the running daemon.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrollstop/internal/settings"
)

// Prefs is the slice of the store the editor needs.
type Prefs interface {
	LoadPreferences(ctx context.Context) (settings.Preferences, error)
	SavePreferences(ctx context.Context, prefs settings.Preferences) error
}

// Announcer notifies the daemon after a successful save.
type Announcer func() error

// Field indices, in tab order. The site list sits after the inputs.
const (
	fieldScrollLimit = iota
	fieldDailyLimit
	fieldRedirect
	fieldNewSite
	fieldSiteList
	fieldCount
)

// quickChips are one-keystroke suggestions shown under the site input.
var quickChips = []string{"tiktok.com", "youtube.com", "reddit.com", "facebook.com", "linkedin.com"}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	chipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type saveDoneMsg struct{ err error }

// Model is the bubbletea model for the editor.
type Model struct {
	store    Prefs
	announce Announcer

	prefs  settings.Preferences
	inputs []textinput.Model
	focus  int
	cursor int // selected site when focus == fieldSiteList

	status  string
	statErr bool
	saving  bool
	done    bool
}

// New builds the editor over the current preferences.
func New(store Prefs, announce Announcer, prefs settings.Preferences) Model {
	m := Model{
		store:    store,
		announce: announce,
		prefs:    prefs.Clone(),
		inputs:   make([]textinput.Model, 4),
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		m.inputs[i] = ti
	}
	m.inputs[fieldScrollLimit].SetValue(strconv.Itoa(prefs.ScrollLimit))
	m.inputs[fieldScrollLimit].Placeholder = "3000"
	m.inputs[fieldDailyLimit].SetValue(strconv.Itoa(prefs.DailyBlockLimit))
	m.inputs[fieldDailyLimit].Placeholder = "5"
	m.inputs[fieldRedirect].SetValue(prefs.RedirectURL)
	m.inputs[fieldRedirect].Placeholder = "https://notion.so"
	m.inputs[fieldNewSite].Placeholder = "site to block, e.g. twitter.com"

	m.inputs[fieldScrollLimit].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statErr = true
		} else {
			m.status = "Saved."
			m.statErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		case "tab", "shift+tab":
			return m.moveFocus(msg.String() == "tab"), nil
		case "ctrl+s":
			return m.save()
		}
		return m.handleFieldKey(msg)
	}
	return m, nil
}

func (m Model) moveFocus(forward bool) Model {
	if forward {
		m.focus = (m.focus + 1) % fieldCount
	} else {
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	}
	// Skip the site list when it is empty.
	if m.focus == fieldSiteList && len(m.prefs.BlockedSites) == 0 {
		return m.moveFocus(forward)
	}
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if m.cursor >= len(m.prefs.BlockedSites) {
		m.cursor = 0
	}
	return m
}

func (m Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == fieldSiteList {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.prefs.BlockedSites)-1 {
				m.cursor++
			}
		case "backspace", "delete", "x":
			if err := m.prefs.RemoveSite(m.cursor); err == nil {
				if m.cursor >= len(m.prefs.BlockedSites) && m.cursor > 0 {
					m.cursor--
				}
				m.status = "Site removed. Ctrl+S to save."
				m.statErr = false
			}
			if len(m.prefs.BlockedSites) == 0 {
				return m.moveFocus(true), nil
			}
		}
		return m, nil
	}

	if m.focus == fieldNewSite && msg.String() == "enter" {
		return m.addSite(m.inputs[fieldNewSite].Value()), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) addSite(raw string) Model {
	if strings.TrimSpace(raw) == "" {
		return m
	}
	if err := m.prefs.AddSite(raw); err != nil {
		m.status = err.Error()
		m.statErr = true
		return m
	}
	m.inputs[fieldNewSite].SetValue("")
	m.status = fmt.Sprintf("Blocked %s. Ctrl+S to save.", m.prefs.BlockedSites[len(m.prefs.BlockedSites)-1])
	m.statErr = false
	return m
}

// save validates the staged edits and writes them back.
func (m Model) save() (tea.Model, tea.Cmd) {
	scroll, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldScrollLimit].Value()))
	if err != nil {
		m.status = "scroll limit must be a number"
		m.statErr = true
		return m, nil
	}
	daily, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldDailyLimit].Value()))
	if err != nil {
		m.status = "daily block limit must be a number"
		m.statErr = true
		return m, nil
	}

	staged := m.prefs.Clone()
	staged.ScrollLimit = scroll
	staged.DailyBlockLimit = daily
	staged.RedirectURL = settings.NormalizeRedirectURL(m.inputs[fieldRedirect].Value())

	if err := staged.Validate(); err != nil {
		m.status = err.Error()
		m.statErr = true
		return m, nil
	}

	m.prefs = staged
	m.saving = true
	m.status = "Saving..."
	m.statErr = false

	store, announce := m.store, m.announce
	return m, func() tea.Msg {
		if err := store.SavePreferences(context.Background(), staged); err != nil {
			return saveDoneMsg{err: err}
		}
		if announce != nil {
			if err := announce(); err != nil {
				return saveDoneMsg{err: fmt.Errorf("saved, but daemon not notified: %w", err)}
			}
		}
		return saveDoneMsg{}
	}
}

// Prefs returns the staged preferences, for tests and the caller after quit.
func (m Model) Preferences() settings.Preferences {
	return m.prefs
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("scrollstop settings"))
	b.WriteString("\n\n")

	labels := []string{"Scroll limit (px)", "Daily block limit", "Redirect URL", "Add site"}
	for i, label := range labels {
		style := labelStyle
		if m.focus == i {
			style = focusStyle
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", style.Render(label), m.inputs[i].View()))
		if i == fieldNewSite {
			b.WriteString(chipStyle.Render("try: " + strings.Join(quickChips, "  ")))
			b.WriteString("\n\n")
		}
	}

	header := labelStyle
	if m.focus == fieldSiteList {
		header = focusStyle
	}
	b.WriteString(header.Render("Blocked sites"))
	b.WriteString("\n")
	if len(m.prefs.BlockedSites) == 0 {
		b.WriteString(chipStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for i, site := range m.prefs.BlockedSites {
		prefix := "  "
		if m.focus == fieldSiteList && i == m.cursor {
			prefix = focusStyle.Render("> ")
		}
		b.WriteString(prefix + site + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		style := okStyle
		if m.statErr {
			style = errStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(chipStyle.Render("tab: next field  enter: add site  x: remove site  ctrl+s: save  esc: quit"))
	b.WriteString("\n")
	return b.String()
}
