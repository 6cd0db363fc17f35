package tts

import (
	"bytes"
	"testing"
)

func TestSpeakableText(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "plain paragraph",
			source:   "Hello world.",
			expected: "Hello world.",
		},
		{
			name:     "heading gets a pause",
			source:   "# Title\n\nBody text.",
			expected: "Title. Body text.",
		},
		{
			name:     "code blocks are dropped",
			source:   "Before.\n\n```go\nfunc main() {}\n```\n\nAfter.",
			expected: "Before. After.",
		},
		{
			name:     "html blocks are dropped",
			source:   "<div>ignored</div>\n\nAfter.",
			expected: "After.",
		},
		{
			name:     "link text survives without its target",
			source:   "See [the docs](https://example.com) for more.",
			expected: "See the docs for more.",
		},
		{
			name:     "bare urls are dropped",
			source:   "Go to <https://example.com> now.",
			expected: "Go to now.",
		},
		{
			name:     "images are dropped",
			source:   "Look ![a chart](chart.png) here.",
			expected: "Look here.",
		},
		{
			name:     "emphasis markers are dropped",
			source:   "This is *really* important.",
			expected: "This is really important.",
		},
		{
			name:     "inline code is read aloud",
			source:   "Run `make test` before pushing.",
			expected: "Run make test before pushing.",
		},
		{
			name:     "list items get pauses",
			source:   "- first\n- second\n",
			expected: "first. second.",
		},
		{
			name:     "terminal punctuation is not doubled",
			source:   "Are you sure?\n\nYes!",
			expected: "Are you sure? Yes!",
		},
		{
			name:     "colons keep their pause",
			source:   "Ingredients:\n\n- rice\n",
			expected: "Ingredients: rice.",
		},
		{
			name:     "blockquotes read as prose",
			source:   "> quoted words\n\nAfter.",
			expected: "quoted words. After.",
		},
		{
			name:     "soft line breaks become spaces",
			source:   "line one\nline two",
			expected: "line one line two.",
		},
		{
			name:     "frontmatter is stripped",
			source:   "---\ntitle: Test\nauthor: someone\n---\n\nReal content.",
			expected: "Real content.",
		},
		{
			name:     "empty document",
			source:   "",
			expected: "",
		},
		{
			name:     "document with only code",
			source:   "```\nx\n```",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpeakableText([]byte(tt.source)); got != tt.expected {
				t.Errorf("SpeakableText() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRemoveFrontmatter(t *testing.T) {
	stripped := removeFrontmatter([]byte("---\ntitle: x\n---\n\nbody\n"))
	if !bytes.Equal(stripped, []byte("\nbody\n")) {
		t.Errorf("removeFrontmatter() = %q, expected the body only", stripped)
	}

	unterminated := []byte("---\ntitle: x\nno end")
	if got := removeFrontmatter(unterminated); !bytes.Equal(got, unterminated) {
		t.Error("unterminated frontmatter should be left untouched")
	}

	plain := []byte("no frontmatter here")
	if got := removeFrontmatter(plain); !bytes.Equal(got, plain) {
		t.Error("documents without frontmatter should pass through")
	}
}
