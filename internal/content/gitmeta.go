package content

import (
	"log/slog"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// EnrichLastModified fills LastModified from git history for documents whose
// metadata lacks last_modified_at.
//
// Best effort: a content root outside any git repository is not an error, and
// a file with no history (untracked) keeps a zero LastModified.
func EnrichLastModified(store *Store) {
	repo, err := git.PlainOpenWithOptions(store.Root(), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("content root is not inside a git repository, skipping last-modified enrichment")
		return
	}

	wt, err := repo.Worktree()
	if err != nil {
		slog.Warn("open git worktree", "error", err)
		return
	}
	wtRoot := wt.Filesystem.Root()

	absRoot, err := filepath.Abs(store.Root())
	if err != nil {
		return
	}

	enriched := 0
	for _, doc := range store.Documents() {
		if !doc.LastModified.IsZero() {
			continue
		}

		rel, err := filepath.Rel(wtRoot, filepath.Join(absRoot, filepath.FromSlash(doc.Source)))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		iter, err := repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
		if err != nil {
			continue
		}
		commit, err := iter.Next()
		iter.Close()
		if err != nil {
			continue
		}

		doc.LastModified = commit.Committer.When
		enriched++
	}

	if enriched > 0 {
		slog.Debug("enriched last-modified from git history", "documents", enriched)
	}
}
