// Package audio provides cross-platform audio playback using the oto/v3
// library. It owns the process-wide audio context, detects whether the
// host has a usable output device, and supplies a mock player for tests.
package audio
