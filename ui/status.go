package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/utter/pkg/tts"
)

var (
	appStyle  = lipgloss.NewStyle().Margin(1, 2)
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	engineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	stateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	speedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	languageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func logoView() string {
	return logoStyle.Render("utter")
}

// statusBarView renders the one-line status bar: engine, playback state,
// speed, language, and the most recent status or error message.
func (m model) statusBarView() string {
	var parts []string

	if len(m.engines) == 0 {
		parts = append(parts, engineStyle.Render("TTS: "+ellipsis))
	} else {
		e := m.engines[m.engineIdx]
		label := "TTS: " + strings.ToUpper(e.ID)
		if e.Readiness != tts.Ready {
			label += fmt.Sprintf(" (%s)", e.Readiness)
		}
		parts = append(parts, engineStyle.Render(label))
	}

	switch {
	case m.speaking:
		parts = append(parts, stateStyle.Render(m.spinner.View()+"▶"))
	case m.downloading:
		parts = append(parts, stateStyle.Render(m.spinner.View()+"⇣"))
	default:
		parts = append(parts, stateStyle.Render("■"))
	}

	parts = append(parts, speedStyle.Render(tts.FormatSpeed(m.speed)))
	parts = append(parts, languageStyle.Render(m.language))

	if m.status != "" {
		if m.statusIsErr {
			parts = append(parts, errorStyle.Render("⚠ "+m.status))
		} else {
			parts = append(parts, okStyle.Render(m.status))
		}
	}

	bar := strings.Join(parts, separatorStyle.Render(" │ "))
	if m.width > 4 {
		bar = truncate.StringWithTail(bar, uint(m.width-4), ellipsis) //nolint:gosec
	}
	return bar
}

func helpView() string {
	help := []string{
		"ctrl+s: speak/stop",
		"ctrl+e: engine",
		"ctrl+↑/↓: speed",
		"ctrl+g: fetch voice",
		"ctrl+y: copy",
		"esc: quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// friendlyError turns playback errors into messages that say what to do
// next rather than where the failure came from.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, tts.ErrEmptyText):
		return "Nothing to say"
	case errors.Is(err, tts.ErrAssetMissing):
		return "Voice not downloaded. Press ctrl+g to fetch it"
	case errors.Is(err, tts.ErrSessionBusy):
		return "Already speaking"
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
