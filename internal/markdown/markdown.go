// Package markdown wraps goldmark for body analysis and HTML conversion.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

func converter() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// Documentation prose embeds raw HTML (video tags, details blocks).
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// ToHTML converts a Markdown body (frontmatter already removed) to HTML.
func ToHTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := converter().Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Heading is a section heading extracted from a body.
type Heading struct {
	Level int
	Text  string
	ID    string // anchor slug
}

// ExtractHeadings parses a body and returns its headings in document order.
func ExtractHeadings(body []byte) []Heading {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(body))

	var headings []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			txt := nodeText(h, body)
			headings = append(headings, Heading{
				Level: h.Level,
				Text:  txt,
				ID:    Slugify(txt),
			})
		}
		return gmast.WalkContinue, nil
	})
	return headings
}

func nodeText(n gmast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

// Slugify derives a stable anchor id from heading text.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
