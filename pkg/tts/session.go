package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// SessionState describes what a Session is doing right now.
type SessionState int

const (
	// StateIdle means no playback is in flight; Start will be accepted.
	StateIdle SessionState = iota

	// StateSpeaking means a playback worker is running.
	StateSpeaking

	// StateStopping means Stop has been called and the session is waiting
	// for the worker to wind down. New starts are still rejected.
	StateStopping
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Result is the outcome of one playback run. A nil Err means the text was
// spoken to completion. ErrCancelled means playback was stopped early,
// which callers should treat as a normal exit.
type Result struct {
	EngineID string
	Err      error
	Duration time.Duration
}

// Session serializes playback: at most one synthesis worker exists at any
// time, and a new one cannot start until the previous one has fully
// finished. The session owns the worker's cancellation; engines never
// decide on their own to stop.
type Session struct {
	mu          sync.Mutex
	state       SessionState
	cancel      context.CancelFunc
	done        chan struct{}
	stopTimeout time.Duration
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{stopTimeout: 5 * time.Second}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches a playback worker for req on engine and returns a channel
// that delivers exactly one Result when the run ends. If a run is already
// in flight the call is rejected with ErrSessionBusy and nothing about the
// running playback changes. The worker's context is derived from parent,
// so cancelling parent also stops playback.
func (s *Session) Start(parent context.Context, engine Engine, req Request) (<-chan Result, error) {
	if engine == nil {
		return nil, ErrEngineUnavailable
	}
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.state = StateSpeaking
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	results := make(chan Result, 1)
	go func() {
		defer close(done)
		start := time.Now()
		log.Debug("playback started", "engine", engine.ID(), "chars", len(req.Text), "speed", req.Speed)

		err := run(ctx, engine, req)
		cancel()
		if errors.Is(err, context.Canceled) {
			err = ErrCancelled
		}

		s.mu.Lock()
		s.state = StateIdle
		s.cancel = nil
		s.done = nil
		s.mu.Unlock()

		log.Debug("playback finished", "engine", engine.ID(), "duration", time.Since(start), "error", err)
		results <- Result{EngineID: engine.ID(), Err: err, Duration: time.Since(start)}
	}()
	return results, nil
}

// run invokes the engine, converting a worker panic into an error so a
// broken backend cannot take down the process or wedge the session.
func run(ctx context.Context, engine Engine, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("playback worker panicked", "engine", engine.ID(), "panic", r)
			err = fmt.Errorf("%w: engine panic: %v", ErrSynthesisFailed, r)
		}
	}()
	return engine.SynthesizeAndPlay(ctx, req)
}

// Stop cancels the in-flight run, if any, and blocks until the worker has
// exited and its result is delivered. The cancellation is issued at most
// once per run: a second Stop during wind-down is a no-op, as is stopping
// an idle session.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateSpeaking {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		log.Warn("timed out waiting for playback worker to exit")
	}
}
