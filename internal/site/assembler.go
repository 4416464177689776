// Package site aggregates the content store into navigable collection
// indexes and drives the build pass that writes the output tree.
package site

import (
	"sort"

	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/locale"
)

// Index is the ordered sequence of documents for one (locale, kind) pair.
type Index struct {
	Locale string
	Kind   content.Kind
	Docs   []*content.Document
}

// Site is the assembled view over one store snapshot: collection indexes
// plus the resolver's reverse permalink index.
type Site struct {
	Store    *content.Store
	Resolver *locale.Resolver
	Indexes  []*Index
}

// Assemble builds one collection index per (locale, kind) pair.
//
// Posts sort by date descending with dateless posts last (treated as
// earliest); ties break on source filename so output is deterministic. Docs
// sort by explicit front matter order, else the numeric filename prefix.
func Assemble(store *content.Store, resolver *locale.Resolver) *Site {
	s := &Site{Store: store, Resolver: resolver}

	grouped := make(map[string]map[content.Kind][]*content.Document)
	for _, doc := range store.Documents() {
		if grouped[doc.Locale] == nil {
			grouped[doc.Locale] = make(map[content.Kind][]*content.Document)
		}
		grouped[doc.Locale][doc.Kind] = append(grouped[doc.Locale][doc.Kind], doc)
	}

	for _, loc := range store.Locales() {
		for _, kind := range []content.Kind{content.KindDoc, content.KindPost} {
			docs := grouped[loc][kind]
			if len(docs) == 0 {
				continue
			}
			sortIndex(docs, kind)
			s.Indexes = append(s.Indexes, &Index{Locale: loc, Kind: kind, Docs: docs})
		}
	}

	return s
}

// Index returns the collection index for a (locale, kind) pair, or nil.
func (s *Site) Index(loc string, kind content.Kind) *Index {
	for _, idx := range s.Indexes {
		if idx.Locale == loc && idx.Kind == kind {
			return idx
		}
	}
	return nil
}

func sortIndex(docs []*content.Document, kind content.Kind) {
	switch kind {
	case content.KindPost:
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i], docs[j]
			// Dateless posts are treated as earliest, so they sort last
			// in descending order.
			if a.HasDate != b.HasDate {
				return a.HasDate
			}
			if a.HasDate && !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.Source < b.Source
		})
	default:
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i], docs[j]
			ka, kb := docOrderKey(a), docOrderKey(b)
			if ka != kb {
				return ka < kb
			}
			return a.Source < b.Source
		})
	}
}

// docOrderKey prefers explicit front matter order over the filename prefix;
// documents with neither sort after everything ordered.
func docOrderKey(d *content.Document) int {
	if d.HasOrder {
		return d.Order
	}
	if d.OrderKey >= 0 {
		return d.OrderKey
	}
	return int(^uint(0) >> 1)
}
