package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/utter/pkg/tts"
)

var (
	readyMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	partialMark = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("●")
	missingMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show speech engines and whether they are ready",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		manager, err := buildManager(cfg)
		if err != nil {
			return err
		}

		var b strings.Builder
		selected := manager.SelectedEngine()
		for _, info := range manager.ListEngines() {
			mark := readyMark
			switch info.Readiness {
			case tts.AssetMissing:
				mark = partialMark
			case tts.NotInstalled, tts.Unavailable:
				mark = missingMark
			}

			line := fmt.Sprintf("%s %s %s %s",
				mark,
				runewidth.FillRight(info.ID, 7),
				runewidth.FillRight(info.DisplayName, 22),
				info.Readiness,
			)
			if info.ID == selected {
				line += subtleStyle.Render(" (selected)")
			}
			b.WriteString(line + "\n")
			if hint := readinessHint(info); hint != "" {
				b.WriteString("  " + subtleStyle.Render(hint) + "\n")
			}
		}

		if store := manager.VoiceStore(); store != nil {
			state := "not downloaded"
			if store.Installed() {
				state = "installed"
				if fi, err := os.Stat(store.ModelPath()); err == nil {
					state = fmt.Sprintf("installed (%s)", humanize.Bytes(uint64(fi.Size()))) //nolint:gosec
				}
			}
			fmt.Fprintf(&b, "\nVoice: %s, %s\n", keyword(store.Voice()), state)
			b.WriteString("  " + subtleStyle.Render(store.Dir()) + "\n")
		}

		fmt.Print(b.String())
		return nil
	},
}

func readinessHint(info tts.EngineInfo) string {
	switch info.Readiness {
	case tts.AssetMissing:
		return "run utter download to fetch the voice model"
	case tts.Unavailable:
		return "no audio output device detected"
	case tts.NotInstalled:
		switch info.ID {
		case "piper":
			return "install piper and make sure it is on your PATH"
		case "gtts":
			return "install gtts-cli (pip install gTTS) and ffmpeg"
		}
	}
	return ""
}
