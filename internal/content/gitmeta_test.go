package content

import (
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestEnrichLastModified_NoRepositoryIsNoop(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "en/docs/page.md", "---\ntitle: P\npermalink: /docs/p/\n---\nok\n")

	store, issues := Load(root, "en")
	require.Empty(t, issues)

	EnrichLastModified(store)
	require.True(t, store.Documents()[0].LastModified.IsZero())
}

func TestEnrichLastModified_UsesCommitDate(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "en/docs/page.md", "---\ntitle: P\npermalink: /docs/p/\n---\nok\n")

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(filepath.ToSlash(filepath.Join("en", "docs", "page.md")))
	require.NoError(t, err)

	when := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	_, err = wt.Commit("add page", &git.CommitOptions{
		Author:    &object.Signature{Name: "t", Email: "t@example.com", When: when},
		Committer: &object.Signature{Name: "t", Email: "t@example.com", When: when},
	})
	require.NoError(t, err)

	store, issues := Load(root, "en")
	require.Empty(t, issues)

	EnrichLastModified(store)
	require.True(t, store.Documents()[0].LastModified.Equal(when))
}

func TestEnrichLastModified_MetadataWins(t *testing.T) {
	root := t.TempDir()
	declared := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	writeDoc(t, root, "en/docs/page.md", "---\ntitle: P\npermalink: /docs/p/\nlast_modified_at: 2020-01-01\n---\nok\n")

	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	store, issues := Load(root, "en")
	require.Empty(t, issues)

	EnrichLastModified(store)
	require.True(t, store.Documents()[0].LastModified.Equal(declared))
}
