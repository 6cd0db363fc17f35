// Package ui implements the interactive terminal session for utter: a text
// prompt, engine and speed controls, and a status bar reporting playback.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/utter/pkg/tts"
)

const ellipsis = "…"

// NewProgram returns a new Tea program wired to the given manager.
func NewProgram(cfg tts.Config, manager *tts.Manager) *tea.Program {
	log.Debug(
		"Starting utter",
		"engine", cfg.Engine,
		"speed", cfg.Speed,
		"language", cfg.Language,
	)
	return tea.NewProgram(newModel(cfg, manager), tea.WithAltScreen())
}

type model struct {
	manager *tts.Manager
	cfg     tts.Config

	input   textarea.Model
	spinner spinner.Model

	// Engine listing as of the last refresh. Readiness probes can be slow,
	// so the listing is fetched asynchronously and starts out empty.
	engines   []tts.EngineInfo
	engineIdx int

	speed    float64
	language string

	speaking    bool
	downloading bool

	status      string
	statusIsErr bool

	progress    chan string
	assetEvents <-chan struct{}

	width  int
	height int
}

func newModel(cfg tts.Config, manager *tts.Manager) model {
	input := textarea.New()
	input.Placeholder = "Type something to say aloud…"
	input.ShowLineNumbers = false
	input.SetHeight(5)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	speed := cfg.Speed
	if !tts.ValidSpeed(speed) {
		speed = tts.DefaultSpeed
	}
	language := cfg.Language
	if language == "" {
		language = tts.DefaultLanguage
	}

	m := model{
		manager:  manager,
		cfg:      cfg,
		input:    input,
		spinner:  sp,
		speed:    speed,
		language: language,
		status:   "Press ctrl+s to speak",
	}

	if store := manager.VoiceStore(); store != nil {
		events, err := store.Watch(context.Background())
		if err != nil {
			log.Debug("voice watcher unavailable", "error", err)
		} else {
			m.assetEvents = events
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, refreshEngines(m.manager)}
	if m.assetEvents != nil {
		cmds = append(cmds, waitForAssetChange(m.assetEvents))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(min(msg.Width-6, 76))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.speaking {
				return m, stopPlayback(m.manager)
			}
			return m, tea.Quit

		case "ctrl+s":
			if m.speaking {
				return m, stopPlayback(m.manager)
			}
			return m.startSpeaking()

		case "ctrl+e":
			return m.cycleEngine()

		case "ctrl+up":
			m.speed = tts.NextSpeed(m.speed)
			return m, nil

		case "ctrl+down":
			m.speed = tts.PrevSpeed(m.speed)
			return m, nil

		case "ctrl+g":
			return m.startDownload()

		case "ctrl+y":
			if text := m.input.Value(); text != "" {
				// Copy using OSC 52
				te.Copy(text)
				// Copy using native system clipboard
				_ = clipboard.WriteAll(text)
				m.setStatus("Copied contents", false)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case speakStartedMsg:
		m.setStatus("Speaking…", false)
		return m, tea.Batch(waitForResult(msg.results), m.spinner.Tick)

	case speakRejectedMsg:
		m.speaking = false
		m.setStatus(friendlyError(msg.err), true)
		return m, nil

	case resultMsg:
		m.speaking = false
		switch {
		case msg.Err == nil:
			m.setStatus(fmt.Sprintf("Done (%s)", msg.Duration.Round(time.Second/10)), false)
		case errors.Is(msg.Err, tts.ErrCancelled):
			m.setStatus("Stopped", false)
		default:
			m.setStatus(friendlyError(msg.Err), true)
		}
		return m, nil

	case downloadProgressMsg:
		m.setStatus(string(msg), false)
		if m.progress == nil {
			return m, nil
		}
		return m, listenProgress(m.progress)

	case downloadDoneMsg:
		m.downloading = false
		m.progress = nil
		if msg.err != nil {
			m.setStatus(friendlyError(msg.err), true)
		} else {
			m.setStatus("Voice installed", false)
		}
		return m, refreshEngines(m.manager)

	case assetsChangedMsg:
		return m, tea.Batch(refreshEngines(m.manager), waitForAssetChange(m.assetEvents))

	case enginesRefreshedMsg:
		m.engines = []tts.EngineInfo(msg)
		if id := m.manager.SelectedEngine(); id != "" {
			for i, e := range m.engines {
				if e.ID == id {
					m.engineIdx = i
				}
			}
		}
		if m.engineIdx >= len(m.engines) {
			m.engineIdx = 0
		}
		return m, nil

	case spinner.TickMsg:
		if !m.speaking && !m.downloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) startSpeaking() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.setStatus("Nothing to say", true)
		return m, nil
	}
	m.speaking = true
	m.setStatus("Synthesizing…", false)
	return m, tea.Batch(speak(m.manager, text, m.speed, m.language), m.spinner.Tick)
}

func (m model) cycleEngine() (tea.Model, tea.Cmd) {
	if len(m.engines) == 0 {
		return m, nil
	}
	m.engineIdx = (m.engineIdx + 1) % len(m.engines)
	e := m.engines[m.engineIdx]
	if err := m.manager.SelectEngine(e.ID); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("Engine: "+e.DisplayName, false)
	return m, nil
}

func (m model) startDownload() (tea.Model, tea.Cmd) {
	if m.downloading {
		return m, nil
	}
	if m.manager.VoiceStore() == nil {
		m.setStatus("No voice store configured", true)
		return m, nil
	}
	m.downloading = true
	m.progress = make(chan string, 8)
	m.setStatus("Starting voice download…", false)
	return m, tea.Batch(download(m.manager, m.progress), listenProgress(m.progress), m.spinner.Tick)
}

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(logoView())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.statusBarView())
	b.WriteString("\n")
	b.WriteString(helpView())
	return appStyle.Render(b.String())
}
