package tts

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used when a request carries no language.
const DefaultLanguage = "en"

// supportedLanguages are the tags the online synthesis service accepts.
// The offline engine ignores language entirely; its voice model fixes it.
var supportedLanguages = []string{
	"af", "ar", "bn", "cs", "da", "de", "el", "en", "es", "fi", "fr",
	"hi", "hu", "id", "it", "ja", "ko", "nl", "no", "pl", "pt", "ro",
	"ru", "sv", "th", "tr", "uk", "vi", "zh-CN", "zh-TW",
}

// Language pairs a BCP 47 tag with its English display name.
type Language struct {
	Tag  string
	Name string
}

// Languages lists every supported language for the online engine.
func Languages() []Language {
	names := display.English.Tags()
	out := make([]Language, 0, len(supportedLanguages))
	for _, tag := range supportedLanguages {
		t := language.Make(tag)
		out = append(out, Language{Tag: tag, Name: names.Name(t)})
	}
	return out
}

// ResolveLanguage turns user input into a supported language tag. It
// accepts exact tags ("es"), region-qualified tags that reduce to a
// supported base ("en-US"), and fuzzy-matched English names ("spanish").
// Empty input resolves to DefaultLanguage.
func ResolveLanguage(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return DefaultLanguage, nil
	}

	for _, tag := range supportedLanguages {
		if strings.EqualFold(tag, s) {
			return tag, nil
		}
	}

	if t, err := language.Parse(s); err == nil {
		base, conf := t.Base()
		if conf > language.No {
			for _, tag := range supportedLanguages {
				if tag == base.String() {
					return tag, nil
				}
			}
		}
	}

	langs := Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = strings.ToLower(l.Name)
	}
	matches := fuzzy.Find(strings.ToLower(s), names)
	if len(matches) > 0 {
		return langs[matches[0].Index].Tag, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, input)
}
