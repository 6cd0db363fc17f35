package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/utter/pkg/tts"
)

// MockPlayer simulates playback for tests without touching the audio
// device. Playback "finishes" when wall time passes the audio's computed
// duration, so tests can exercise the same polling loops as production
// code on a fast clock.
type MockPlayer struct {
	mu       sync.Mutex
	playing  bool
	started  time.Time
	duration time.Duration

	playCount int
	stopCount int

	// PlayErr, when set, is returned by the next Play call.
	PlayErr error

	// FixedDuration overrides the duration derived from the audio size,
	// letting tests choose how long simulated playback lasts.
	FixedDuration time.Duration

	// OnPlay, when set, observes the audio handed to Play.
	OnPlay func(pcm []byte)
}

// NewMockPlayer returns a stopped mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play simulates starting playback of pcm.
func (m *MockPlayer) Play(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PlayErr != nil {
		return m.PlayErr
	}
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}

	d := m.FixedDuration
	if d == 0 {
		d = tts.DefaultPCMFormat().Duration(len(pcm))
	}
	m.playing = true
	m.started = time.Now()
	m.duration = d
	m.playCount++

	if m.OnPlay != nil {
		m.OnPlay(pcm)
	}
	return nil
}

// Stop halts simulated playback. Only stops of active playback count
// toward StopCount, matching how the real player treats idle stops as
// no-ops.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.playing = false
		m.stopCount++
	}
	return nil
}

// IsPlaying reports whether the simulated playback window is still open.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return false
	}
	if time.Since(m.started) >= m.duration {
		m.playing = false
	}
	return m.playing
}

// Close behaves like Stop.
func (m *MockPlayer) Close() error {
	return m.Stop()
}

// PlayCount returns how many times Play succeeded.
func (m *MockPlayer) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCount
}

// StopCount returns how many times an active playback was stopped.
func (m *MockPlayer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCount
}

var _ tts.AudioPlayer = (*MockPlayer)(nil)
