// Package tts turns text into audible speech through interchangeable
// engine backends.
//
// The package is built around three ideas. An Engine wraps one synthesis
// backend and owns its whole pipeline: render text to PCM, then play it
// through the shared audio device. A Session serializes playback so at
// most one utterance is ever in flight, and owns stopping it. The Manager
// wires engines, the voice store, and the session together behind the API
// the CLI and UI consume.
//
// All audio inside the package is 16-bit mono little-endian PCM at
// 22050Hz; engines convert whatever their backend produces into that
// format before it reaches the player.
package tts
