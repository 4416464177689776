package render

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/errs"
)

// linkPattern matches markdown links and images; the leading group
// distinguishes image syntax from plain links.
var linkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)

// rewriteBody rewrites internal link and image targets in a document body.
//
// Links to other source documents (relative *.md targets) become resolved
// permalinks. A target that resolves to no document degrades to its plain
// text form and is recorded as a broken_link warning, so one bad link never
// blocks the page.
func (r *Renderer) rewriteBody(doc *content.Document) ([]byte, []*errs.Error) {
	var warnings []*errs.Error

	out := linkPattern.ReplaceAllStringFunc(string(doc.Body), func(match string) string {
		sub := linkPattern.FindStringSubmatch(match)
		isImage := sub[1] == "!"
		text := sub[2]
		target := sub[3]

		if isExternal(target) {
			return match
		}

		if isImage {
			return fmt.Sprintf("![%s](%s)", text, r.rebaseImage(doc, target))
		}

		// Absolute site paths are assumed to be permalinks already.
		if strings.HasPrefix(target, "/") {
			return match
		}

		permalink, ok := r.resolveDocLink(doc, target)
		if !ok {
			warnings = append(warnings, errs.New(errs.KindBrokenLink, doc.Source,
				fmt.Sprintf("link target %s does not resolve, rendering as text", target)))
			return text
		}
		return fmt.Sprintf("[%s](%s)", text, permalink)
	})

	return []byte(out), warnings
}

func isExternal(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#")
}

// resolveDocLink maps a relative markdown target onto the permalink of the
// document it names, preserving any fragment.
func (r *Renderer) resolveDocLink(doc *content.Document, target string) (string, bool) {
	target, fragment, _ := strings.Cut(target, "#")
	if !strings.HasSuffix(strings.ToLower(target), ".md") {
		// Not a document reference; leave asset-style relative targets to
		// the image/asset pipeline and keep the link intact.
		return reassemble(target, fragment), true
	}

	source := path.Clean(path.Join(doc.SourceDir(), target))
	resolved, ok := r.lookup.BySource(source)
	if !ok {
		return "", false
	}
	return reassemble(resolved.Permalink, fragment), true
}

func reassemble(target, fragment string) string {
	if fragment == "" {
		return target
	}
	return target + "#" + fragment
}

// rebaseImage rewrites a relative image reference onto the absolute asset
// path mirroring the source tree.
func (r *Renderer) rebaseImage(doc *content.Document, target string) string {
	if strings.HasPrefix(target, "/") {
		return target
	}
	return r.assetBase + "/" + path.Clean(path.Join(doc.SourceDir(), target))
}
