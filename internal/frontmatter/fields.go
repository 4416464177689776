package frontmatter

import (
	"fmt"
	"time"

	"github.com/stitchdocs/sitegen/internal/errs"
)

// Fields is the typed view of a document's metadata block.
//
// Title and Permalink are required; everything else is optional with the
// zero value as default. Has* flags distinguish "absent" from "zero".
type Fields struct {
	Title     string
	Permalink string
	Excerpt   string
	Layout    string
	TOC       bool

	Date    time.Time
	HasDate bool

	LastModifiedAt    time.Time
	HasLastModifiedAt bool

	Categories []string

	Order    int
	HasOrder bool

	// Extra holds fields outside the known schema, preserved for
	// re-serialization.
	Extra map[string]any
}

var knownKeys = map[string]struct{}{
	"title": {}, "permalink": {}, "excerpt": {}, "layout": {}, "toc": {},
	"date": {}, "last_modified_at": {}, "categories": {}, "order": {},
}

// Decode converts a parsed metadata map into typed Fields.
//
// A missing or empty title or permalink yields a malformed_metadata error;
// path is only used for error context.
func Decode(raw map[string]any, path string) (Fields, error) {
	f := Fields{Extra: map[string]any{}}

	title, _ := raw["title"].(string)
	if title == "" {
		return f, errs.New(errs.KindMalformedMetadata, path, "missing required field: title")
	}
	f.Title = title

	permalink, _ := raw["permalink"].(string)
	if permalink == "" {
		return f, errs.New(errs.KindMalformedMetadata, path, "missing required field: permalink")
	}
	f.Permalink = permalink

	f.Excerpt, _ = raw["excerpt"].(string)
	f.Layout, _ = raw["layout"].(string)
	f.TOC, _ = raw["toc"].(bool)

	if v, ok := raw["date"]; ok {
		t, err := asTime(v)
		if err != nil {
			return f, errs.Wrap(errs.KindMalformedMetadata, path, "invalid date", err)
		}
		f.Date = t
		f.HasDate = true
	}

	if v, ok := raw["last_modified_at"]; ok {
		t, err := asTime(v)
		if err != nil {
			return f, errs.Wrap(errs.KindMalformedMetadata, path, "invalid last_modified_at", err)
		}
		f.LastModifiedAt = t
		f.HasLastModifiedAt = true
	}

	if v, ok := raw["categories"]; ok {
		f.Categories = asStringList(v)
	}

	if v, ok := raw["order"]; ok {
		switch n := v.(type) {
		case int:
			f.Order = n
			f.HasOrder = true
		case int64:
			f.Order = int(n)
			f.HasOrder = true
		case float64:
			f.Order = int(n)
			f.HasOrder = true
		}
	}

	for k, v := range raw {
		if _, known := knownKeys[k]; !known {
			f.Extra[k] = v
		}
	}

	return f, nil
}

// Map converts Fields back into the serializable metadata map. Decode
// followed by Map followed by Decode is value stable.
func (f Fields) Map() map[string]any {
	m := map[string]any{
		"title":     f.Title,
		"permalink": f.Permalink,
	}
	if f.Excerpt != "" {
		m["excerpt"] = f.Excerpt
	}
	if f.Layout != "" {
		m["layout"] = f.Layout
	}
	if f.TOC {
		m["toc"] = true
	}
	if f.HasDate {
		m["date"] = f.Date.Format("2006-01-02 15:04:05 -0700")
	}
	if f.HasLastModifiedAt {
		m["last_modified_at"] = f.LastModifiedAt.Format("2006-01-02 15:04:05 -0700")
	}
	if len(f.Categories) > 0 {
		m["categories"] = f.Categories
	}
	if f.HasOrder {
		m["order"] = f.Order
	}
	for k, v := range f.Extra {
		m[k] = v
	}
	return m
}

var timeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func asStringList(v any) []string {
	switch list := v.(type) {
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
