package tts

import (
	"fmt"
	"strings"
)

// Request is a validated unit of work for an engine: the text to speak and
// how to speak it. Construct one with NewRequest so invalid input is
// rejected before any engine is consulted.
type Request struct {
	Text     string
	Speed    float64
	Language string
}

// NewRequest validates and normalizes the inputs for a synthesis request.
// Text is trimmed of surrounding whitespace; empty or whitespace-only text
// is rejected. An empty language falls back to DefaultLanguage.
func NewRequest(text string, speed float64, language string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, ErrEmptyText
	}
	if !ValidSpeed(speed) {
		return Request{}, fmt.Errorf("%w: %.2f is not between %.1f and %.1f", ErrSpeedOutOfRange, speed, MinSpeed, MaxSpeed)
	}
	if language == "" {
		language = DefaultLanguage
	}
	return Request{Text: text, Speed: speed, Language: language}, nil
}
