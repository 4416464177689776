package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_MissThenHit(t *testing.T) {
	c := openCache(t)

	_, ok, err := c.Fingerprint("en/docs/faq.md")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put("en/docs/faq.md", "abc123"))

	fp, ok, err := c.Fingerprint("en/docs/faq.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc123", fp)
}

func TestCache_PutOverwrites(t *testing.T) {
	c := openCache(t)
	require.NoError(t, c.Put("x.md", "v1"))
	require.NoError(t, c.Put("x.md", "v2"))

	fp, ok, err := c.Fingerprint("x.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", fp)
}

func TestCache_PruneDropsRemovedSources(t *testing.T) {
	c := openCache(t)
	require.NoError(t, c.Put("keep.md", "a"))
	require.NoError(t, c.Put("gone.md", "b"))

	require.NoError(t, c.Prune(map[string]struct{}{"keep.md": {}}))

	_, ok, err := c.Fingerprint("gone.md")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.Fingerprint("keep.md")
	require.NoError(t, err)
	require.True(t, ok)
}
