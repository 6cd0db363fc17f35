package tts

import "context"

// Engine is one way of turning text into audible speech. Implementations
// wrap an external synthesis backend and own the full pipeline for a
// request: synthesize, decode, play, wait.
type Engine interface {
	// ID returns the stable identifier used in configuration and on the
	// command line, e.g. "piper".
	ID() string

	// DisplayName returns the human-readable name shown in the UI.
	DisplayName() string

	// CheckReady probes the engine's dependencies and reports whether it
	// can speak right now. It must be cheap enough to call on every
	// request and must not initialize the audio device.
	CheckReady() Readiness

	// SynthesizeAndPlay renders the request to audio and plays it through
	// the shared output device, blocking until playback finishes or ctx
	// is cancelled. Cancelling ctx interrupts synthesis and playback; in
	// that case the returned error is ctx.Err().
	SynthesizeAndPlay(ctx context.Context, req Request) error
}

// EngineInfo is a point-in-time snapshot of an engine's identity and
// readiness, for listings and status displays.
type EngineInfo struct {
	ID          string
	DisplayName string
	Readiness   Readiness
}
