package engines

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/utter/internal/audio"
	"github.com/dgnsrekt/utter/pkg/tts"
)

// stubLookPath resolves only the named binaries, so readiness tests do
// not depend on what happens to be installed on the host.
func stubLookPath(found ...string) func(string) (string, error) {
	set := make(map[string]bool, len(found))
	for _, name := range found {
		set[name] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/stub/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestTail(t *testing.T) {
	if got := tail([]byte("  short error\n")); got != "short error" {
		t.Errorf("tail() = %q, expected the trimmed input", got)
	}

	long := strings.Repeat("x", 600) + "END"
	got := tail([]byte(long))
	if !strings.HasPrefix(got, "…") {
		t.Errorf("tail() of long input = %q, expected a leading ellipsis", got)
	}
	if !strings.HasSuffix(got, "END") {
		t.Error("tail() dropped the end of the output")
	}
}

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("explicit path", func(t *testing.T) {
		got, err := findExecutable(stubLookPath(), bin, nil)
		if err != nil {
			t.Fatalf("findExecutable failed: %v", err)
		}
		if got != bin {
			t.Errorf("findExecutable() = %q, expected %q", got, bin)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		if _, err := findExecutable(stubLookPath(), filepath.Join(dir, "absent"), nil); err == nil {
			t.Error("expected an error for a nonexistent explicit path")
		}
	})

	t.Run("explicit path is a directory", func(t *testing.T) {
		if _, err := findExecutable(stubLookPath(), dir+string(os.PathSeparator), nil); err == nil {
			t.Error("expected an error for a directory")
		}
	})

	t.Run("resolved via lookup", func(t *testing.T) {
		got, err := findExecutable(stubLookPath("tool"), "tool", nil)
		if err != nil {
			t.Fatalf("findExecutable failed: %v", err)
		}
		if got != "/stub/bin/tool" {
			t.Errorf("findExecutable() = %q, expected the lookup result", got)
		}
	})

	t.Run("found in extra dirs", func(t *testing.T) {
		got, err := findExecutable(stubLookPath(), "tool", []string{dir})
		if err != nil {
			t.Fatalf("findExecutable failed: %v", err)
		}
		if got != bin {
			t.Errorf("findExecutable() = %q, expected %q", got, bin)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := findExecutable(stubLookPath(), "tool", nil); err == nil {
			t.Error("expected an error when nothing resolves")
		}
	})
}

func TestPlayPCM(t *testing.T) {
	player := audio.NewMockPlayer()
	player.FixedDuration = time.Millisecond
	supply := func() (tts.AudioPlayer, error) { return player, nil }

	if err := playPCM(context.Background(), "fake", supply, []byte{1, 2}, time.Millisecond); err != nil {
		t.Fatalf("playPCM failed: %v", err)
	}
	if got := player.PlayCount(); got != 1 {
		t.Errorf("PlayCount() = %d, expected 1", got)
	}
}

func TestPlayPCMPlayerUnavailable(t *testing.T) {
	supply := func() (tts.AudioPlayer, error) { return nil, errors.New("no device") }

	err := playPCM(context.Background(), "fake", supply, []byte{1, 2}, time.Millisecond)
	if !errors.Is(err, tts.ErrEngineUnavailable) {
		t.Errorf("playPCM() = %v, expected ErrEngineUnavailable", err)
	}
}

func TestPlayPCMPlayFailure(t *testing.T) {
	player := audio.NewMockPlayer()
	player.PlayErr = errors.New("device busy")
	supply := func() (tts.AudioPlayer, error) { return player, nil }

	err := playPCM(context.Background(), "fake", supply, []byte{1, 2}, time.Millisecond)
	if !errors.Is(err, tts.ErrSynthesisFailed) {
		t.Errorf("playPCM() = %v, expected ErrSynthesisFailed", err)
	}
	var engineErr *tts.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatal("expected an EngineError")
	}
	if engineErr.Engine != "fake" || engineErr.Op != "playback" {
		t.Errorf("EngineError = %+v, expected engine fake op playback", engineErr)
	}
}

func TestPlayPCMCancellation(t *testing.T) {
	player := audio.NewMockPlayer()
	player.FixedDuration = 10 * time.Second
	supply := func() (tts.AudioPlayer, error) { return player, nil }

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := playPCM(ctx, "fake", supply, []byte{1, 2}, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("playPCM() = %v, expected context.Canceled", err)
	}
	if got := player.StopCount(); got != 1 {
		t.Errorf("StopCount() = %d, expected the player to be stopped once", got)
	}
}
