package tts

import (
	"errors"
	"testing"
)

func TestLanguages(t *testing.T) {
	langs := Languages()
	if len(langs) == 0 {
		t.Fatal("expected a non-empty language list")
	}

	byTag := make(map[string]string, len(langs))
	for _, l := range langs {
		if l.Name == "" {
			t.Errorf("language %q has no display name", l.Tag)
		}
		byTag[l.Tag] = l.Name
	}

	if byTag["en"] != "English" {
		t.Errorf(`Name for "en" = %q, expected "English"`, byTag["en"])
	}
	if byTag["de"] != "German" {
		t.Errorf(`Name for "de" = %q, expected "German"`, byTag["de"])
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input", "", "en"},
		{"exact tag", "de", "de"},
		{"uppercase tag", "DE", "de"},
		{"padded tag", "  fr ", "fr"},
		{"region qualified", "en-US", "en"},
		{"regional chinese", "zh-CN", "zh-CN"},
		{"english name", "german", "de"},
		{"capitalized name", "Spanish", "es"},
		{"name fragment", "portug", "pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLanguage(tt.input)
			if err != nil {
				t.Fatalf("ResolveLanguage(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ResolveLanguage(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveLanguageUnknown(t *testing.T) {
	if _, err := ResolveLanguage("klingon"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("ResolveLanguage(klingon) error = %v, expected ErrUnknownLanguage", err)
	}
}
