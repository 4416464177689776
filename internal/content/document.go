// Package content ingests the source tree into an immutable store of
// documents organized by locale and collection.
package content

import (
	"path"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"github.com/stitchdocs/sitegen/internal/markdown"
)

// Kind is the collection a document belongs to.
type Kind string

const (
	// KindDoc is reference documentation (FAQ entries, feature pages),
	// ordered by declared order or numeric filename prefix.
	KindDoc Kind = "doc"

	// KindPost is a dated entry (release changelogs), ordered by date
	// descending.
	KindPost Kind = "post"
)

// Document is one content unit. Built during ingestion and treated as
// read-only for the rest of the build pass.
type Document struct {
	Source string // path relative to the content root, slash separated
	Locale string
	Kind   Kind

	Title     string
	Permalink string
	Excerpt   string
	Layout    string
	TOC       bool

	Date    time.Time
	HasDate bool

	// LastModified is taken from last_modified_at, or enriched from git
	// history when absent. Zero when neither source provides it.
	LastModified time.Time

	Categories []string

	Order    int
	HasOrder bool

	// OrderKey is the numeric filename prefix for docs ("010-install.md"
	// -> 10), or -1 when the name carries none.
	OrderKey int

	Body    []byte
	RawMeta []byte // original metadata block, kept for fingerprinting

	Headings []markdown.Heading
}

// Fingerprint returns a stable content fingerprint over metadata and body,
// used by the incremental render cache.
func (d *Document) Fingerprint() string {
	return mdfp.CalculateFingerprintFromParts(string(d.RawMeta), string(d.Body))
}

// BaseName returns the source filename without directory or extension.
func (d *Document) BaseName() string {
	name := path.Base(d.Source)
	return strings.TrimSuffix(name, path.Ext(name))
}

// SourceDir returns the directory of the source path within the content root.
func (d *Document) SourceDir() string {
	dir := path.Dir(d.Source)
	if dir == "." {
		return ""
	}
	return dir
}

// orderKeyFromName extracts a leading numeric prefix: "020-params.md" -> 20.
// Returns -1 when the name has no numeric prefix.
func orderKeyFromName(name string) int {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return -1
	}
	key := 0
	for _, c := range name[:i] {
		key = key*10 + int(c-'0')
	}
	return key
}

// dateFromName recovers a post date from a "2006-01-02-slug.md" filename.
func dateFromName(name string) (time.Time, bool) {
	if len(name) < len("2006-01-02") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", name[:len("2006-01-02")])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
