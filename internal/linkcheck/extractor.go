// Package linkcheck verifies the rendered output tree: every internal link
// in the generated HTML must point at a file that was actually written.
package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is one reference extracted from a rendered page.
type Link struct {
	URL        string
	Text       string
	Tag        string // a, img, script, link
	Attribute  string // href or src
	IsInternal bool
}

// ExtractLinks extracts all link-like references from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all link-like references from HTML.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []*Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElement(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func collectElement(n *html.Node, links *[]*Link, base *url.URL) {
	var attrKey string
	switch n.Data {
	case "a", "link":
		attrKey = "href"
	case "img", "script", "video", "audio", "source":
		attrKey = "src"
	default:
		return
	}

	target := attr(n, attrKey)
	if target == "" {
		return
	}

	*links = append(*links, &Link{
		URL:        target,
		Text:       textOf(n),
		Tag:        n.Data,
		Attribute:  attrKey,
		IsInternal: isInternal(target, base),
	})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return strings.TrimSpace(b.String())
}

func isInternal(target string, base *url.URL) bool {
	if strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "tel:") ||
		strings.HasPrefix(target, "data:") {
		return false
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return true
	}
	return base != nil && base.Host != "" && u.Host == base.Host
}
