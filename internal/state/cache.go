// Package state persists the incremental render cache between builds.
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache maps source paths to the content fingerprint of their last rendered
// version. A document whose fingerprint is unchanged and whose output file
// still exists can skip rendering.
type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rendered (
	source       TEXT PRIMARY KEY,
	fingerprint  TEXT NOT NULL,
	rendered_at  TIMESTAMP NOT NULL
);
`

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open render cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init render cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Fingerprint returns the stored fingerprint for a source path.
func (c *Cache) Fingerprint(source string) (string, bool, error) {
	var fp string
	err := c.db.QueryRow(`SELECT fingerprint FROM rendered WHERE source = ?`, source).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query render cache: %w", err)
	}
	return fp, true, nil
}

// Put records the fingerprint of a freshly rendered source.
func (c *Cache) Put(source, fingerprint string) error {
	_, err := c.db.Exec(`
INSERT INTO rendered (source, fingerprint, rendered_at) VALUES (?, ?, ?)
ON CONFLICT(source) DO UPDATE SET fingerprint = excluded.fingerprint, rendered_at = excluded.rendered_at`,
		source, fingerprint, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update render cache: %w", err)
	}
	return nil
}

// Prune drops cache rows whose source is no longer in the content set, so
// removed documents do not accumulate.
func (c *Cache) Prune(live map[string]struct{}) error {
	rows, err := c.db.Query(`SELECT source FROM rendered`)
	if err != nil {
		return fmt.Errorf("list render cache: %w", err)
	}
	var stale []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			_ = rows.Close()
			return err
		}
		if _, ok := live[source]; !ok {
			stale = append(stale, source)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, source := range stale {
		if _, err := c.db.Exec(`DELETE FROM rendered WHERE source = ?`, source); err != nil {
			return fmt.Errorf("prune render cache: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error { return c.db.Close() }
