package engines

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dgnsrekt/utter/internal/audio"
	"github.com/dgnsrekt/utter/pkg/tts"
)

// Binary names that exist nowhere on a real system, so the extra-dir
// fallback in findExecutable cannot resolve them behind the stub's back.
const (
	testCLI    = "utter-test-gtts-cli"
	testFFmpeg = "utter-test-ffmpeg"
)

func newTestGoogle(cfg GoogleConfig) *Google {
	if cfg.CLIPath == "" {
		cfg.CLIPath = testCLI
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = testFFmpeg
	}
	g := NewGoogle(cfg)
	g.audioOK = func() bool { return true }
	return g
}

func TestGoogleIdentity(t *testing.T) {
	g := NewGoogle(GoogleConfig{})
	if g.ID() != "gtts" {
		t.Errorf("ID() = %q, expected %q", g.ID(), "gtts")
	}
	if g.DisplayName() == "" {
		t.Error("DisplayName() is empty")
	}
}

func TestGoogleCheckReady(t *testing.T) {
	tests := []struct {
		name      string
		hasCLI    bool
		hasFFmpeg bool
		audioOK   bool
		expected  tts.Readiness
	}{
		{"everything present", true, true, true, tts.Ready},
		{"missing gtts-cli", false, true, true, tts.NotInstalled},
		{"missing ffmpeg", true, false, true, tts.NotInstalled},
		{"nothing installed", false, false, true, tts.NotInstalled},
		{"no audio output", true, true, false, tts.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found []string
			if tt.hasCLI {
				found = append(found, testCLI)
			}
			if tt.hasFFmpeg {
				found = append(found, testFFmpeg)
			}

			g := newTestGoogle(GoogleConfig{})
			g.lookPath = stubLookPath(found...)
			g.audioOK = func() bool { return tt.audioOK }

			if got := g.CheckReady(); got != tt.expected {
				t.Errorf("CheckReady() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGoogleArgs(t *testing.T) {
	g := newTestGoogle(GoogleConfig{})

	req, err := tts.NewRequest("hello world", 1.0, "en")
	if err != nil {
		t.Fatal(err)
	}
	got := g.argsFor(req, "/tmp/out.mp3")
	want := []string{"hello world", "--output", "/tmp/out.mp3", "--lang", "en"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("argsFor() = %v, expected %v", got, want)
	}
}

func TestGoogleArgsSlowMode(t *testing.T) {
	g := newTestGoogle(GoogleConfig{})

	hasSlow := func(args []string) bool {
		for _, a := range args {
			if a == "--slow" {
				return true
			}
		}
		return false
	}

	tests := []struct {
		speed float64
		slow  bool
	}{
		{0.7, true},
		{0.75, true},
		{1.0, false},
		{1.3, false},
		{1.5, false},
	}

	for _, tt := range tests {
		req, err := tts.NewRequest("hello", tt.speed, "de")
		if err != nil {
			t.Fatal(err)
		}
		if got := hasSlow(g.argsFor(req, "/tmp/out.mp3")); got != tt.slow {
			t.Errorf("argsFor() at speed %v: slow = %v, expected %v", tt.speed, got, tt.slow)
		}
	}
}

func TestGoogleServesFromCache(t *testing.T) {
	req, err := tts.NewRequest("hello", 1.0, "en")
	if err != nil {
		t.Fatal(err)
	}

	cache := tts.NewAudioCache(0)
	cache.Put(tts.CacheKey("gtts", "", req.Language, req.Speed, req.Text), make([]byte, 64))

	player := audio.NewMockPlayer()
	player.FixedDuration = time.Millisecond

	g := newTestGoogle(GoogleConfig{
		Cache:        cache,
		PollInterval: time.Millisecond,
		Player:       func() (tts.AudioPlayer, error) { return player, nil },
	})
	// nothing resolvable: a cache hit must not need the binaries
	g.lookPath = stubLookPath()

	if err := g.SynthesizeAndPlay(context.Background(), req); err != nil {
		t.Fatalf("SynthesizeAndPlay with cached audio failed: %v", err)
	}
	if got := player.PlayCount(); got != 1 {
		t.Errorf("PlayCount() = %d, expected 1", got)
	}
}

func TestGoogleSynthesizeReportsMissingCLI(t *testing.T) {
	player := audio.NewMockPlayer()
	g := newTestGoogle(GoogleConfig{
		Player: func() (tts.AudioPlayer, error) { return player, nil },
	})
	g.lookPath = stubLookPath()

	req, err := tts.NewRequest("hello", 1.0, "en")
	if err != nil {
		t.Fatal(err)
	}

	err = g.SynthesizeAndPlay(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error with no synthesizer installed")
	}
	var engineErr *tts.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, expected an EngineError", err)
	}
	if engineErr.Engine != "gtts" {
		t.Errorf("Engine = %q, expected %q", engineErr.Engine, "gtts")
	}
	if player.PlayCount() != 0 {
		t.Error("player was invoked despite synthesis failing")
	}
}
