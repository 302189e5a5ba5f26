package emoji

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/mattjoyce/launchkit/internal/storage"
)

// UpdateResult reports what a refresh did.
type UpdateResult struct {
	Source    string
	Checksum  string
	Entries   int
	Unchanged bool
}

// Checksum returns the BLAKE3 digest of data in the "blake3:<hex>" form.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// checkCacheDir guards the directory the cache is rebuilt and renamed in.
var checkCacheDir = storage.CheckLocalDir

// Update rebuilds the cache at path from source (URL or file). The new cache is
// built beside the old one and renamed into place, so readers see either the
// old or the new table. A source whose checksum matches the current cache is
// not re-imported.
func Update(ctx context.Context, path, source string, logger *slog.Logger) (UpdateResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := UpdateResult{Source: source}

	rc, err := Fetch(ctx, source)
	if err != nil {
		return res, err
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return res, fmt.Errorf("read emoji source: %w", err)
	}
	res.Checksum = Checksum(data)

	if current, err := currentMeta(ctx, path); err == nil && current.Checksum == res.Checksum {
		logger.Info("emoji cache already up to date", "checksum", res.Checksum)
		res.Entries = current.Entries
		res.Unchanged = true
		return res, nil
	}

	emojis, err := ParseSource(bytes.NewReader(data))
	if err != nil {
		return res, err
	}
	if len(emojis) == 0 {
		return res, fmt.Errorf("emoji source %s has no entries", source)
	}
	res.Entries = len(emojis)

	tmp := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := checkCacheDir(filepath.Dir(tmp)); err != nil {
		if errors.Is(err, storage.ErrNetworkFilesystem) {
			return res, fmt.Errorf("emoji cache cannot be rebuilt: %w; set emoji.cache_path (LAUNCHKIT_EMOJI_CACHE) to a local directory", err)
		}
		return res, fmt.Errorf("check emoji cache directory: %w", err)
	}
	_ = os.Remove(tmp)
	if err := build(ctx, tmp, res, emojis); err != nil {
		_ = os.Remove(tmp)
		return res, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("replace emoji cache: %w", err)
	}

	logger.Info("emoji cache updated", "path", path, "entries", res.Entries, "checksum", res.Checksum)
	return res, nil
}

func currentMeta(ctx context.Context, path string) (Meta, error) {
	s, err := Open(ctx, path)
	if err != nil {
		return Meta{}, err
	}
	defer s.Close()
	return s.Meta(ctx)
}

func build(ctx context.Context, path string, res UpdateResult, emojis []Emoji) error {
	db, err := storage.OpenSQLite(ctx, path, Migrations)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin emoji import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO emoji (position, name, glyph, category, keywords) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("prepare emoji insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range emojis {
		if _, err := stmt.ExecContext(ctx, i, e.Name, e.Glyph, e.Category, strings.Join(e.Keywords, " ")); err != nil {
			return fmt.Errorf("insert emoji %q: %w", e.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cache_meta (id, source, checksum, entries, updated_at) VALUES (1, ?, ?, ?, ?);`,
		res.Source, res.Checksum, len(emojis), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("write emoji cache meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit emoji import: %w", err)
	}
	return nil
}

// IsUnavailable reports whether err means the cache needs an update rather
// than that something is broken.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCacheMissing) || errors.Is(err, ErrCacheStale)
}
