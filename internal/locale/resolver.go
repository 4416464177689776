// Package locale maps (permalink, requested locale) pairs onto the best
// matching document variant.
package locale

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/errs"
)

// Resolver is a pure lookup over one content store snapshot.
type Resolver struct {
	def         string
	locales     []string
	tags        []language.Tag
	matcher     language.Matcher
	byPermalink map[string]map[string]*content.Document // locale -> permalink -> doc
	bySource    map[string]*content.Document
}

// NewResolver indexes the store by (locale, permalink) and by source path.
//
// Two documents claiming the same permalink within one locale make routing
// ambiguous; each collision is returned as a duplicate_permalink error and is
// fatal to the build.
func NewResolver(store *content.Store) (*Resolver, []*errs.Error) {
	r := &Resolver{
		def:         store.DefaultLocale(),
		locales:     store.Locales(),
		byPermalink: make(map[string]map[string]*content.Document),
		bySource:    make(map[string]*content.Document),
	}
	var issues []*errs.Error

	for _, doc := range store.Documents() {
		perLocale := r.byPermalink[doc.Locale]
		if perLocale == nil {
			perLocale = make(map[string]*content.Document)
			r.byPermalink[doc.Locale] = perLocale
		}
		if existing, ok := perLocale[doc.Permalink]; ok {
			issues = append(issues, errs.New(errs.KindDuplicatePermalink, doc.Source,
				fmt.Sprintf("permalink %s already claimed by %s in locale %s", doc.Permalink, existing.Source, doc.Locale)))
			continue
		}
		perLocale[doc.Permalink] = doc
		r.bySource[doc.Source] = doc
	}

	// Matcher tags: default locale first so it wins ambiguous matches.
	r.tags = append(r.tags, language.Make(r.def))
	for _, loc := range r.locales {
		if loc != r.def {
			r.tags = append(r.tags, language.Make(loc))
		}
	}
	r.matcher = language.NewMatcher(r.tags)

	return r, issues
}

// Resolve returns the best document for a permalink and requested locale:
// exact locale, else BCP 47 best match, else the default locale, else a
// not_found error.
func (r *Resolver) Resolve(permalink, loc string) (*content.Document, error) {
	if doc, ok := r.byPermalink[loc][permalink]; ok {
		return doc, nil
	}

	if matched := r.matchLocale(loc); matched != "" && matched != loc {
		if doc, ok := r.byPermalink[matched][permalink]; ok {
			return doc, nil
		}
	}

	if doc, ok := r.byPermalink[r.def][permalink]; ok {
		return doc, nil
	}

	return nil, errs.New(errs.KindNotFound, permalink,
		fmt.Sprintf("no document for locale %s or default %s", loc, r.def))
}

// BySource finds a document by its source path, for resolving relative links
// between source files.
func (r *Resolver) BySource(source string) (*content.Document, bool) {
	doc, ok := r.bySource[source]
	return doc, ok
}

// Lookup reports whether a permalink exists in the given locale without any
// fallback.
func (r *Resolver) Lookup(permalink, loc string) (*content.Document, bool) {
	doc, ok := r.byPermalink[loc][permalink]
	return doc, ok
}

// Locales returns the locale codes known to the resolver.
func (r *Resolver) Locales() []string { return r.locales }

// DefaultLocale returns the fallback locale code.
func (r *Resolver) DefaultLocale() string { return r.def }

// matchLocale maps a requested locale onto the closest available one, e.g.
// pt-BR onto pt, or de-AT onto de.
func (r *Resolver) matchLocale(loc string) string {
	desired, err := language.Parse(loc)
	if err != nil {
		return ""
	}
	_, idx, conf := r.matcher.Match(desired)
	if conf == language.No || idx < 0 || idx >= len(r.tags) {
		return ""
	}
	if idx == 0 {
		return r.def
	}
	// tags[0] is the default; the rest follow r.locales order minus the default.
	i := 1
	for _, candidate := range r.locales {
		if candidate == r.def {
			continue
		}
		if i == idx {
			return candidate
		}
		i++
	}
	return ""
}
