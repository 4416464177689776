package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contentDir, outDir string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "sitegen.yaml")
	cfg := "site:\n  title: Test\n  default_locale: en\ncontent:\n  dir: " + contentDir + "\noutput:\n  directory: " + outDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestInitCmd_CreatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	root := &CLI{Config: path}

	require.NoError(t, (&InitCmd{}).Run(nil, root))
	require.FileExists(t, path)

	// A second run without force must refuse to overwrite.
	require.Error(t, (&InitCmd{}).Run(nil, root))
	require.NoError(t, (&InitCmd{Force: true}).Run(nil, root))
}

func TestBuildCmd_BuildsSite(t *testing.T) {
	content := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(content, "en", "docs"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(content, "en", "docs", "faq.md"),
		[]byte("---\ntitle: FAQ\npermalink: /docs/faq/\n---\n# FAQ\n"), 0o644))

	out := t.TempDir()
	root := &CLI{Config: writeConfig(t, content, out)}

	require.NoError(t, (&BuildCmd{}).Run(nil, root))
	require.FileExists(t, filepath.Join(out, "docs", "faq", "index.html"))
}

func TestBuildCmd_MalformedMetadataFails(t *testing.T) {
	content := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(content, "en", "docs"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(content, "en", "docs", "bad.md"),
		[]byte("---\npermalink: /docs/bad/\n---\nno title\n"), 0o644))

	root := &CLI{Config: writeConfig(t, content, t.TempDir())}
	require.Error(t, (&BuildCmd{}).Run(nil, root))
}

func TestCheckCmd_CleanTree(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "docs", "faq"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(out, "docs", "faq", "index.html"),
		[]byte(`<a href="/docs/faq/">self</a>`), 0o644))

	cmd := &CheckCmd{Dir: out, BaseURL: "https://docs.local"}
	require.NoError(t, cmd.Run(nil, &CLI{}))
}

func TestCheckCmd_DanglingLinkFails(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "docs", "faq"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(out, "docs", "faq", "index.html"),
		[]byte(`<a href="/docs/gone/">gone</a>`), 0o644))

	cmd := &CheckCmd{Dir: out, BaseURL: "https://docs.local"}
	require.Error(t, cmd.Run(nil, &CLI{}))
}
