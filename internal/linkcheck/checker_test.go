package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestExtractLinks_ClassifiesInternalAndExternal(t *testing.T) {
	html := `<html><body>
		<a href="/docs/faq/">FAQ</a>
		<a href="https://example.org/">External</a>
		<a href="https://docs.local/docs/a/">Same host</a>
		<a href="#section">Fragment</a>
		<a href="mailto:team@example.org">Mail</a>
		<img src="/assets/en/docs/diagram.png">
	</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(html), "https://docs.local")
	require.NoError(t, err)
	require.Len(t, links, 6)

	byURL := map[string]*Link{}
	for _, l := range links {
		byURL[l.URL] = l
	}
	require.True(t, byURL["/docs/faq/"].IsInternal)
	require.False(t, byURL["https://example.org/"].IsInternal)
	require.True(t, byURL["https://docs.local/docs/a/"].IsInternal)
	require.False(t, byURL["#section"].IsInternal)
	require.False(t, byURL["mailto:team@example.org"].IsInternal)
	require.True(t, byURL["/assets/en/docs/diagram.png"].IsInternal)
	require.Equal(t, "img", byURL["/assets/en/docs/diagram.png"].Tag)
}

func TestCheck_CleanTree(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"docs/faq/index.html":     `<a href="/docs/install/">Install</a> <a href="/docs/faq/#top">Top</a>`,
		"docs/install/index.html": `<img src="/assets/en/docs/pic.png">`,
		"assets/en/docs/pic.png":  "png",
		"fr/docs/faq/index.html":  `<a href="/docs/faq/">English version</a>`,
	})

	result, err := Check(dir, "https://docs.local")
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Equal(t, 3, result.Pages)
}

func TestCheck_ReportsDanglingLink(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"docs/faq/index.html": `<a href="/docs/removed/">Removed page</a>`,
	})

	result, err := Check(dir, "https://docs.local")
	require.NoError(t, err)
	require.False(t, result.OK())
	require.Len(t, result.Problems, 1)
	require.Equal(t, "docs/faq/index.html", result.Problems[0].Page)
	require.Equal(t, "/docs/removed/", result.Problems[0].Target)
	require.Equal(t, "Removed page", result.Problems[0].Text)
}

func TestCheck_PrettyURLWithoutTrailingSlash(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":          `<a href="/docs/faq">FAQ</a>`,
		"docs/faq/index.html": "ok",
	})

	result, err := Check(dir, "https://docs.local")
	require.NoError(t, err)
	require.True(t, result.OK())
}

func TestCheck_RelativeTargetResolvesFromPageDirectory(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"docs/a/index.html": `<a href="../b/">B</a>`,
		"docs/b/index.html": "ok",
	})

	result, err := Check(dir, "https://docs.local")
	require.NoError(t, err)
	require.True(t, result.OK())
}
