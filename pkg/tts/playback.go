package tts

import (
	"context"
	"time"
)

// DefaultPollInterval is how often playback completion is checked. Engines
// accept an override so tests can run on a much shorter clock.
const DefaultPollInterval = 100 * time.Millisecond

// AudioPlayer plays raw PCM audio. Play starts playback and returns
// immediately; completion is observed by polling IsPlaying. Implementations
// must be safe for use from a single playback worker at a time.
type AudioPlayer interface {
	Play(pcm []byte) error
	Stop() error
	IsPlaying() bool
	Close() error
}

// PlayerFunc supplies an AudioPlayer on demand. Engines hold a PlayerFunc
// rather than a player so the audio device is only initialized when
// something actually plays, never during readiness checks.
type PlayerFunc func() (AudioPlayer, error)

// WaitForPlayback blocks until the player finishes or ctx is cancelled,
// checking every interval. On cancellation the player is stopped before
// returning ctx.Err(). An interval of zero or less falls back to
// DefaultPollInterval.
func WaitForPlayback(ctx context.Context, player AudioPlayer, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = player.Stop()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}
