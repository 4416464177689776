package linkcheck

import (
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Problem is one dangling internal reference found in the output tree.
type Problem struct {
	Page   string // output-relative path of the page containing the link
	Target string // the link target as written
	Tag    string
	Text   string
}

// Result summarizes a check over one output tree.
type Result struct {
	Pages    int
	Links    int
	Internal int
	Problems []Problem
}

// OK reports whether the tree contained no dangling internal links.
func (r *Result) OK() bool {
	return len(r.Problems) == 0
}

// Check walks the rendered output tree under dir and verifies that every
// internal link in every HTML page resolves to a file in that same tree.
// External links are not fetched.
func Check(dir string, baseURL string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		links, err := ExtractLinks(p, baseURL)
		if err != nil {
			return err
		}

		result.Pages++
		result.Links += len(links)
		for _, link := range links {
			if !link.IsInternal {
				continue
			}
			result.Internal++
			if !targetExists(dir, rel, link.URL) {
				result.Problems = append(result.Problems, Problem{
					Page:   filepath.ToSlash(rel),
					Target: link.URL,
					Tag:    link.Tag,
					Text:   link.Text,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// targetExists resolves an internal link target against the output tree.
// A target resolves when it names an existing file directly or when it
// names a directory that holds an index.html.
func targetExists(dir, fromPage, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	clean := u.Path
	if clean == "" {
		// Pure fragment or query, refers to the page itself.
		return true
	}

	if !strings.HasPrefix(clean, "/") {
		// Relative to the directory of the referencing page.
		clean = path.Join("/", path.Dir(filepath.ToSlash(fromPage)), clean)
	}
	clean = path.Clean(clean)

	fsPath := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if info, err := os.Stat(fsPath); err == nil {
		if !info.IsDir() {
			return true
		}
		_, err := os.Stat(filepath.Join(fsPath, "index.html"))
		return err == nil
	}
	// Pretty URLs may omit the trailing slash.
	_, err = os.Stat(filepath.Join(fsPath, "index.html"))
	return err == nil
}
