package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/utter/pkg/tts"
)

// resultMsg carries the outcome of a finished playback run.
type resultMsg tts.Result

// speakStartedMsg is sent when a playback run has been accepted.
type speakStartedMsg struct {
	results <-chan tts.Result
}

// speakRejectedMsg is sent when a playback request is refused up front,
// before any audio is produced.
type speakRejectedMsg struct {
	err error
}

// downloadProgressMsg carries one progress line from a voice download.
type downloadProgressMsg string

// downloadDoneMsg is sent when a voice download finishes.
type downloadDoneMsg struct {
	err error
}

// assetsChangedMsg is sent when the voice directory changes on disk.
type assetsChangedMsg struct{}

// enginesRefreshedMsg carries a fresh engine readiness listing.
type enginesRefreshedMsg []tts.EngineInfo

// speak starts a playback run. Readiness checks can shell out, so this
// runs off the update loop.
func speak(manager *tts.Manager, text string, speed float64, language string) tea.Cmd {
	return func() tea.Msg {
		results, err := manager.Play(context.Background(), text, speed, language)
		if err != nil {
			return speakRejectedMsg{err: err}
		}
		return speakStartedMsg{results: results}
	}
}

// waitForResult relays the run's single result into the program.
func waitForResult(results <-chan tts.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return resultMsg(res)
	}
}

// stopPlayback interrupts the current run. It blocks until the worker has
// exited; the pending waitForResult delivers the cancelled result.
func stopPlayback(manager *tts.Manager) tea.Cmd {
	return func() tea.Msg {
		manager.Stop()
		return nil
	}
}

// download fetches the configured voice, streaming progress lines through
// the channel. The channel is closed when the download ends, which is how
// the pending listenProgress learns to stand down.
func download(manager *tts.Manager, progress chan string) tea.Cmd {
	return func() tea.Msg {
		err := manager.FetchVoiceAsset(context.Background(), func(line string) {
			select {
			case progress <- line:
			default:
			}
		})
		close(progress)
		return downloadDoneMsg{err: err}
	}
}

// listenProgress relays one progress line; Update re-arms it until the
// channel closes.
func listenProgress(progress <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-progress
		if !ok {
			return nil
		}
		return downloadProgressMsg(line)
	}
}

// waitForAssetChange relays one voice directory change notification.
func waitForAssetChange(events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-events
		if !ok {
			return nil
		}
		return assetsChangedMsg{}
	}
}

// refreshEngines re-probes engine readiness off the update loop.
func refreshEngines(manager *tts.Manager) tea.Cmd {
	return func() tea.Msg {
		return enginesRefreshedMsg(manager.ListEngines())
	}
}
