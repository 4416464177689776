// Package render turns documents into final HTML pages: internal links
// resolved to permalinks, relative images rebased onto the asset root, and an
// optional table of contents from the document headings.
package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/errs"
	"github.com/stitchdocs/sitegen/internal/markdown"
)

//go:embed layout.html
var layoutHTML string

//go:embed index.html
var indexHTML string

var (
	layoutTmpl = template.Must(template.New("layout").Parse(layoutHTML))
	indexTmpl  = template.Must(template.New("index").Parse(indexHTML))
)

// Lookup is the read-only document access the renderer needs. Satisfied by
// locale.Resolver.
type Lookup interface {
	BySource(source string) (*content.Document, bool)
	Lookup(permalink, loc string) (*content.Document, bool)
}

// Renderer renders documents against one store snapshot. It holds no
// ownership of documents; they are borrowed read-only per render pass.
type Renderer struct {
	lookup    Lookup
	assetBase string // absolute URL prefix for copied assets, e.g. "/assets"
	siteTitle string
}

func NewRenderer(lookup Lookup, assetBase, siteTitle string) *Renderer {
	if assetBase == "" {
		assetBase = "/assets"
	}
	return &Renderer{lookup: lookup, assetBase: assetBase, siteTitle: siteTitle}
}

// Result is the output of rendering one document.
type Result struct {
	HTML     []byte
	TOC      []markdown.Heading
	Warnings []*errs.Error // broken links, never fatal
}

type pageData struct {
	SiteTitle    string
	Title        string
	Locale       string
	Excerpt      string
	LastModified string
	TOC          []markdown.Heading
	Body         template.HTML
}

// Render produces the final page for one document.
func (r *Renderer) Render(doc *content.Document) (*Result, error) {
	body, warnings := r.rewriteBody(doc)

	inner, err := markdown.ToHTML(body)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, doc.Source, "convert markdown", err)
	}

	data := pageData{
		SiteTitle: r.siteTitle,
		Title:     doc.Title,
		Locale:    doc.Locale,
		Excerpt:   doc.Excerpt,
		Body:      template.HTML(inner),
	}
	if !doc.LastModified.IsZero() {
		data.LastModified = doc.LastModified.Format("2006-01-02")
	}
	if doc.TOC {
		data.TOC = doc.Headings
	}

	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, data); err != nil {
		return nil, errs.Wrap(errs.KindIO, doc.Source, "execute layout", err)
	}

	return &Result{HTML: buf.Bytes(), TOC: data.TOC, Warnings: warnings}, nil
}

// IndexEntry is one row of a collection index page.
type IndexEntry struct {
	Title     string
	Permalink string
	Excerpt   string
	Date      time.Time
}

type indexData struct {
	SiteTitle string
	Title     string
	Locale    string
	Entries   []indexEntryData
}

type indexEntryData struct {
	Title     string
	Permalink string
	Excerpt   string
	Date      string
}

// RenderIndex produces a collection index page (FAQ index, changelog archive).
func (r *Renderer) RenderIndex(title, loc string, entries []IndexEntry) ([]byte, error) {
	data := indexData{SiteTitle: r.siteTitle, Title: title, Locale: loc}
	for _, e := range entries {
		row := indexEntryData{Title: e.Title, Permalink: e.Permalink, Excerpt: e.Excerpt}
		if !e.Date.IsZero() {
			row.Date = e.Date.Format("2006-01-02")
		}
		data.Entries = append(data.Entries, row)
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
