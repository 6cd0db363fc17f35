package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for the outcomes callers are expected to branch on.
// ErrCancelled is the normal result of stopping playback early, not a
// failure.
var (
	ErrEmptyText         = errors.New("text is empty")
	ErrSpeedOutOfRange   = errors.New("speed out of range")
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrAssetMissing      = errors.New("voice asset not downloaded")
	ErrSynthesisFailed   = errors.New("synthesis failed")
	ErrCancelled         = errors.New("playback cancelled")
	ErrSessionBusy       = errors.New("a playback session is already active")
	ErrUnknownEngine     = errors.New("unknown engine")
	ErrUnknownLanguage   = errors.New("unknown language")
)

// EngineError describes a failure inside an engine backend. Detail carries
// diagnostic text, typically the tail of a subprocess stderr stream. Err is
// one of the sentinel errors above so callers can classify with errors.Is.
type EngineError struct {
	Engine string
	Op     string
	Detail string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Engine, e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
