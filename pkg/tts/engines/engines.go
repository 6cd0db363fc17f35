// Package engines contains the text-to-speech backends: Google TTS over
// the network and Piper running locally. Both deliver 16-bit mono 22050Hz
// PCM to the shared audio player and block until playback completes or
// their context is cancelled.
package engines

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgnsrekt/utter/pkg/tts"
)

// playPCM hands pcm to the engine's player and waits for it to drain,
// polling every poll. Cancellation stops the player and surfaces as
// ctx.Err().
func playPCM(ctx context.Context, engineID string, player tts.PlayerFunc, pcm []byte, poll time.Duration) error {
	p, err := player()
	if err != nil {
		return fmt.Errorf("%w: %v", tts.ErrEngineUnavailable, err)
	}
	if err := p.Play(pcm); err != nil {
		return &tts.EngineError{Engine: engineID, Op: "playback", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
	}
	return tts.WaitForPlayback(ctx, p, poll)
}

// tail returns the last few hundred bytes of subprocess stderr, which is
// where CLIs put the line that actually explains the failure.
func tail(b []byte) string {
	const max = 500
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		s = "…" + s[len(s)-max:]
	}
	return s
}

// findExecutable resolves name against PATH and then a handful of
// well-known install locations. A name containing a path separator is
// treated as an explicit path and only stat'd.
func findExecutable(lookPath func(string) (string, error), name string, extraDirs []string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name, nil
		}
		return "", fmt.Errorf("%s does not exist", name)
	}
	if path, err := lookPath(name); err == nil {
		return path, nil
	}
	for _, dir := range extraDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found", name)
}

// commonBinDirs are searched after PATH, covering pipx and Homebrew
// installs that often are not on a login shell's PATH.
func commonBinDirs() []string {
	dirs := []string{"/usr/local/bin", "/opt/homebrew/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append([]string{filepath.Join(home, ".local", "bin")}, dirs...)
	}
	return dirs
}

// defaultLookPath wraps exec.LookPath so engines can swap it out in tests.
func defaultLookPath(name string) (string, error) {
	return exec.LookPath(name)
}
