package tts

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// SpeakableText reduces a markdown document to the prose worth reading
// aloud. Code blocks, raw HTML, and bare URLs are dropped; link text is
// kept without its target; block boundaries become sentence pauses so
// headings do not run into the paragraph below them.
func SpeakableText(source []byte) string {
	source = removeFrontmatter(source)

	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			if entering {
				return ast.WalkSkipChildren, nil
			}
		case *ast.AutoLink, *ast.Image, *ast.RawHTML:
			if entering {
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			if !entering {
				writePause(&buf)
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// writePause appends a sentence break unless the text already ends with
// terminal punctuation.
func writePause(buf *bytes.Buffer) {
	b := bytes.TrimRight(buf.Bytes(), " \t\n")
	if len(b) == 0 {
		return
	}
	switch b[len(b)-1] {
	case '.', '!', '?', ':', ';', ',':
		buf.WriteByte(' ')
	default:
		buf.Truncate(len(b))
		buf.WriteString(". ")
	}
}

// removeFrontmatter strips a leading YAML frontmatter block, which is
// metadata rather than content.
func removeFrontmatter(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("---\n")) {
		return b
	}
	rest := b[4:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return b
	}
	rest = rest[end+4:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		return rest[i+1:]
	}
	return nil
}
