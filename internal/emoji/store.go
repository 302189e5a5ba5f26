package emoji

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/mattjoyce/launchkit/internal/storage"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations is the cache schema, rooted at the migration files.
var Migrations = mustSub(migrationFiles, "migrations")

var (
	// ErrCacheMissing means no cache has been built yet.
	ErrCacheMissing = errors.New("emoji cache missing")
	// ErrCacheStale means the cache exists but cannot be trusted.
	ErrCacheStale = errors.New("emoji cache stale")
)

// Meta describes the last successful refresh.
type Meta struct {
	Source    string
	Checksum  string
	Entries   int
	UpdatedAt time.Time
}

// Store reads the emoji cache.
type Store struct {
	db *sql.DB
}

// Open opens the cache at path read-only. There is no locking against a
// concurrent refresh; the refresh swaps the file in with a rename.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := storage.OpenReadOnly(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCacheMissing, path)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Meta returns the refresh record, or ErrCacheStale when it is absent or does
// not match the table.
func (s *Store) Meta(ctx context.Context) (Meta, error) {
	var (
		m         Meta
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, checksum, entries, updated_at FROM cache_meta WHERE id = 1;`,
	).Scan(&m.Source, &m.Checksum, &m.Entries, &updatedAt)
	if err != nil {
		// A missing row or a missing table both mean an interrupted build.
		return Meta{}, fmt.Errorf("%w: %v", ErrCacheStale, err)
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		m.UpdatedAt = t
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emoji;`).Scan(&count); err != nil {
		return Meta{}, fmt.Errorf("%w: %v", ErrCacheStale, err)
	}
	if count != m.Entries {
		return Meta{}, fmt.Errorf("%w: %d rows, expected %d", ErrCacheStale, count, m.Entries)
	}
	return m, nil
}

// Search returns emoji whose name or keywords contain query, in source order.
// An empty query returns everything.
func (s *Store) Search(ctx context.Context, query string) ([]Emoji, error) {
	q := `SELECT name, glyph, category, keywords FROM emoji`
	var args []any
	if query = strings.TrimSpace(query); query != "" {
		q += ` WHERE name LIKE ? ESCAPE '\' OR keywords LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(query) + "%"
		args = append(args, pattern, pattern)
	}
	q += ` ORDER BY position;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search emoji: %w", err)
	}
	defer rows.Close()

	var out []Emoji
	for rows.Next() {
		var (
			e        Emoji
			keywords string
		)
		if err := rows.Scan(&e.Name, &e.Glyph, &e.Category, &keywords); err != nil {
			return nil, fmt.Errorf("scan emoji: %w", err)
		}
		e.Keywords = strings.Fields(keywords)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search emoji: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
