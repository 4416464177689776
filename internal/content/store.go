package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stitchdocs/sitegen/internal/errs"
	"github.com/stitchdocs/sitegen/internal/frontmatter"
	"github.com/stitchdocs/sitegen/internal/markdown"
)

// collectionDirs maps source directory names to collection kinds.
var collectionDirs = map[string]Kind{
	"docs":  KindDoc,
	"posts": KindPost,
}

// Store is the immutable content snapshot for one build pass.
type Store struct {
	root    string
	def     string
	docs    []*Document
	locales []string
}

// Load walks `<root>/<locale>/<docs|posts>/**.md` and parses every document.
//
// Per-document failures (unreadable file, malformed metadata) are collected
// and returned alongside the store; ingestion continues past them so one bad
// page never hides the rest of the corpus.
func Load(root, defaultLocale string) (*Store, []*errs.Error) {
	store := &Store{root: root, def: defaultLocale}
	var issues []*errs.Error

	entries, err := os.ReadDir(root)
	if err != nil {
		return store, append(issues, errs.Wrap(errs.KindIO, root, "read content root", err))
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		locale := entry.Name()
		found := false

		for dir, kind := range collectionDirs {
			base := filepath.Join(root, locale, dir)
			if _, err := os.Stat(base); err != nil {
				continue
			}
			found = true
			issues = append(issues, store.loadCollection(base, locale, kind)...)
		}

		if found {
			store.locales = append(store.locales, locale)
		}
	}

	sort.Strings(store.locales)
	sort.Slice(store.docs, func(i, j int) bool { return store.docs[i].Source < store.docs[j].Source })

	slog.Debug("content store loaded",
		"documents", len(store.docs),
		"locales", len(store.locales),
		"issues", len(issues))
	return store, issues
}

func (s *Store) loadCollection(base, locale string, kind Kind) []*errs.Error {
	var issues []*errs.Error

	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			issues = append(issues, errs.Wrap(errs.KindIO, p, "walk content", err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		source := filepath.ToSlash(rel)

		doc, derr := s.parseFile(p, source, locale, kind)
		if derr != nil {
			issues = append(issues, derr)
			return nil
		}
		s.docs = append(s.docs, doc)
		return nil
	})
	if walkErr != nil {
		issues = append(issues, errs.Wrap(errs.KindIO, base, "walk collection", walkErr))
	}
	return issues
}

func (s *Store) parseFile(path, source, locale string, kind Kind) (*Document, *errs.Error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, source, "read document", err)
	}

	meta, body, had, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedMetadata, source, "unterminated metadata block", err)
	}
	if !had {
		return nil, errs.New(errs.KindMalformedMetadata, source, "document has no metadata block")
	}

	rawFields, err := frontmatter.ParseYAML(meta)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedMetadata, source, "invalid metadata yaml", err)
	}

	fields, err := frontmatter.Decode(rawFields, source)
	if err != nil {
		var ce *errs.Error
		if e, ok := err.(*errs.Error); ok {
			ce = e
		} else {
			ce = errs.Wrap(errs.KindMalformedMetadata, source, "decode metadata", err)
		}
		return nil, ce
	}

	doc := &Document{
		Source:     source,
		Locale:     locale,
		Kind:       kind,
		Title:      fields.Title,
		Permalink:  fields.Permalink,
		Excerpt:    fields.Excerpt,
		Layout:     fields.Layout,
		TOC:        fields.TOC,
		Date:       fields.Date,
		HasDate:    fields.HasDate,
		Categories: fields.Categories,
		Order:      fields.Order,
		HasOrder:   fields.HasOrder,
		OrderKey:   orderKeyFromName(filepath.Base(path)),
		Body:       body,
		RawMeta:    meta,
		Headings:   markdown.ExtractHeadings(body),
	}

	if fields.HasLastModifiedAt {
		doc.LastModified = fields.LastModifiedAt
	}

	// Posts without an explicit date fall back to the filename prefix.
	if kind == KindPost && !doc.HasDate {
		if t, ok := dateFromName(filepath.Base(path)); ok {
			doc.Date = t
			doc.HasDate = true
		}
	}

	return doc, nil
}

// Documents returns all documents in source order.
func (s *Store) Documents() []*Document { return s.docs }

// Locales returns all locale codes present in the store, sorted.
func (s *Store) Locales() []string { return s.locales }

// DefaultLocale returns the configured default locale code.
func (s *Store) DefaultLocale() string { return s.def }

// Root returns the content root directory.
func (s *Store) Root() string { return s.root }

// BySource finds a document by its source path.
func (s *Store) BySource(source string) (*Document, bool) {
	for _, d := range s.docs {
		if d.Source == source {
			return d, true
		}
	}
	return nil, false
}
