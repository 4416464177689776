package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/errs"
	"github.com/stitchdocs/sitegen/internal/locale"
)

func setup(t *testing.T, files map[string]string) (*content.Store, *locale.Resolver) {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	store, issues := content.Load(root, "en")
	require.Empty(t, issues)
	res, dups := locale.NewResolver(store)
	require.Empty(t, dups)
	return store, res
}

func TestRender_InternalLinkRewrittenToPermalink(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/faq.md":       "---\ntitle: FAQ\npermalink: /docs/faq/\n---\nSee [threading](threading.md).\n",
		"en/docs/threading.md": "---\ntitle: Threading\npermalink: /docs/threading/\n---\nok\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/faq.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Contains(t, string(result.HTML), `<a href="/docs/threading/">threading</a>`)
}

func TestRender_LinkFragmentPreserved(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/faq.md":       "---\ntitle: FAQ\npermalink: /docs/faq/\n---\n[tips](threading.md#tips)\n",
		"en/docs/threading.md": "---\ntitle: Threading\npermalink: /docs/threading/\n---\nok\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/faq.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Contains(t, string(result.HTML), `href="/docs/threading/#tips"`)
}

func TestRender_BrokenLinkFallsBackToText(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/faq.md": "---\ntitle: FAQ\npermalink: /docs/faq/\n---\nSee [missing page](missing.md) please.\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/faq.md")
	result, err := r.Render(doc)
	require.NoError(t, err)

	html := string(result.HTML)
	require.NotContains(t, html, "missing.md")
	require.NotContains(t, html, `<a href="missing`)
	require.Contains(t, html, "missing page")

	require.Len(t, result.Warnings, 1)
	require.True(t, errors.Is(result.Warnings[0], errs.ErrBrokenLink))
}

func TestRender_ExternalLinksUntouched(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/faq.md": "---\ntitle: FAQ\npermalink: /docs/faq/\n---\n[Inkscape](https://inkscape.org) and [mail](mailto:a@b.c)\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/faq.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Contains(t, string(result.HTML), `href="https://inkscape.org"`)
	require.Contains(t, string(result.HTML), `href="mailto:a@b.c"`)
}

func TestRender_RelativeImageRebasedToAssets(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/hooping.md": "---\ntitle: Hooping\npermalink: /docs/hooping/\n---\n![hoop](images/hoop.png)\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/hooping.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Contains(t, string(result.HTML), `src="/assets/en/docs/images/hoop.png"`)
}

func TestRender_TOCWhenEnabled(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/guide.md": "---\ntitle: Guide\npermalink: /docs/guide/\ntoc: true\n---\n## Setup\n\n## Stitching\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/guide.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Len(t, result.TOC, 2)

	html := string(result.HTML)
	require.Contains(t, html, `class="toc"`)
	require.Contains(t, html, `href="#setup"`)
	require.Contains(t, html, `href="#stitching"`)
}

func TestRender_NoTOCByDefault(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/guide.md": "---\ntitle: Guide\npermalink: /docs/guide/\n---\n## Setup\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/guide.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.NotContains(t, string(result.HTML), `class="toc"`)
}

func TestRender_LastModifiedInFooter(t *testing.T) {
	store, res := setup(t, map[string]string{
		"en/docs/faq.md": "---\ntitle: FAQ\npermalink: /docs/faq/\nlast_modified_at: 2021-08-02\n---\nok\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	doc, _ := store.BySource("en/docs/faq.md")
	result, err := r.Render(doc)
	require.NoError(t, err)
	require.Contains(t, string(result.HTML), "Last updated 2021-08-02")
}

func TestRenderIndex(t *testing.T) {
	_, res := setup(t, map[string]string{
		"en/docs/faq.md": "---\ntitle: FAQ\npermalink: /docs/faq/\n---\nok\n",
	})
	r := NewRenderer(res, "/assets", "Site")

	html, err := r.RenderIndex("Changelog", "en", []IndexEntry{
		{Title: "Release 2.1.0", Permalink: "/posts/release-2-1-0/", Date: time.Date(2020, 5, 16, 0, 0, 0, 0, time.UTC)},
		{Title: "Release 2.0.0", Permalink: "/posts/release-2-0-0/", Excerpt: "First stable."},
	})
	require.NoError(t, err)
	require.Contains(t, string(html), `href="/posts/release-2-1-0/"`)
	require.Contains(t, string(html), "<time>2020-05-16</time>")
	require.Contains(t, string(html), "First stable.")
}
