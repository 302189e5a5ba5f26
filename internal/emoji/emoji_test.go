package emoji

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/storage"
)

const sampleSource = `{
  "grinning": {"keywords": ["face", "smile", "happy"], "char": "😀", "fitzpatrick_scale": false, "category": "people"},
  "cat": {"keywords": ["animal", "meow"], "char": "🐱", "fitzpatrick_scale": false, "category": "animals_and_nature"},
  "octocat": {"keywords": ["animal", "github"], "char": null, "fitzpatrick_scale": false, "category": "_custom"},
  "100_percent": {"keywords": ["score", "perfect"], "char": "💯", "fitzpatrick_scale": false, "category": "symbols"}
}`

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emojis.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseSourceKeepsOrderAndSkipsMissingChars(t *testing.T) {
	emojis, err := ParseSource(strings.NewReader(sampleSource))
	require.NoError(t, err)
	require.Len(t, emojis, 3)

	assert.Equal(t, "grinning", emojis[0].Name)
	assert.Equal(t, "cat", emojis[1].Name)
	assert.Equal(t, "100_percent", emojis[2].Name)
	assert.Equal(t, []string{"animal", "meow"}, emojis[1].Keywords)
	assert.Equal(t, "animals_and_nature", emojis[1].Category)
}

func TestParseSourceRejectsArray(t *testing.T) {
	_, err := ParseSource(strings.NewReader(`[{"char":"x"}]`))
	assert.Error(t, err)
}

func TestOpenMissingCache(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "emoji.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCacheMissing))
	assert.True(t, IsUnavailable(err))
}

func TestUpdateAndSearch(t *testing.T) {
	ctx := context.Background()
	cache := filepath.Join(t.TempDir(), "cache", "emoji.db")
	source := writeSource(t, sampleSource)

	res, err := Update(ctx, cache, source, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Entries)
	assert.False(t, res.Unchanged)
	assert.True(t, strings.HasPrefix(res.Checksum, "blake3:"))

	store, err := Open(ctx, cache)
	require.NoError(t, err)
	defer store.Close()

	meta, err := store.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, source, meta.Source)
	assert.Equal(t, res.Checksum, meta.Checksum)
	assert.Equal(t, 3, meta.Entries)
	assert.False(t, meta.UpdatedAt.IsZero())

	all, err := store.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "grinning", all[0].Name)

	byKeyword, err := store.Search(ctx, "meow")
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "🐱", byKeyword[0].Glyph)

	byName, err := store.Search(ctx, "GRIN")
	require.NoError(t, err)
	require.Len(t, byName, 1, "LIKE is case-insensitive for ASCII")

	literal, err := store.Search(ctx, "100_")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100_percent", literal[0].Name)

	none, err := store.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateUnchangedSourceIsSkipped(t *testing.T) {
	ctx := context.Background()
	cache := filepath.Join(t.TempDir(), "emoji.db")
	source := writeSource(t, sampleSource)

	_, err := Update(ctx, cache, source, nil)
	require.NoError(t, err)

	res, err := Update(ctx, cache, source, nil)
	require.NoError(t, err)
	assert.True(t, res.Unchanged)
	assert.Equal(t, 3, res.Entries)
}

func TestUpdateReplacesCache(t *testing.T) {
	ctx := context.Background()
	cache := filepath.Join(t.TempDir(), "emoji.db")

	_, err := Update(ctx, cache, writeSource(t, sampleSource), nil)
	require.NoError(t, err)

	_, err = Update(ctx, cache, writeSource(t, `{"star": {"keywords": ["night"], "char": "⭐", "category": "symbols"}}`), nil)
	require.NoError(t, err)

	store, err := Open(ctx, cache)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "star", all[0].Name)

	matches, _ := filepath.Glob(cache + ".*.tmp")
	assert.Empty(t, matches, "temporary build file left behind")
}

func TestUpdateFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emojis.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleSource))
	}))
	defer srv.Close()

	cache := filepath.Join(t.TempDir(), "emoji.db")
	res, err := Update(context.Background(), cache, srv.URL+"/emojis.json", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Entries)

	_, err = Update(context.Background(), cache, srv.URL+"/missing.json", nil)
	assert.Error(t, err)
}

func TestUpdateRejectsEmptySource(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "emoji.db")
	_, err := Update(context.Background(), cache, writeSource(t, `{}`), nil)
	assert.Error(t, err)

	_, err = os.Stat(cache)
	assert.True(t, os.IsNotExist(err), "failed update must not create a cache")
}

func onNetworkMount(t *testing.T, fsType string) {
	t.Helper()
	orig := checkCacheDir
	checkCacheDir = func(dir string) error {
		return storage.CheckLocalDirWith(dir, func(string) (string, error) { return fsType, nil })
	}
	t.Cleanup(func() { checkCacheDir = orig })
}

func TestUpdateRefusesNetworkCacheDir(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "share")
	cache := filepath.Join(dir, "emoji.db")
	onNetworkMount(t, "nfs")

	_, err := Update(ctx, cache, writeSource(t, sampleSource), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNetworkFilesystem)
	assert.Contains(t, err.Error(), "emoji.cache_path")
	assert.Contains(t, err.Error(), dir)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "refused update must not create the cache directory")
}

func TestUpdateUnchangedSkipsDirCheck(t *testing.T) {
	ctx := context.Background()
	cache := filepath.Join(t.TempDir(), "emoji.db")
	source := writeSource(t, sampleSource)

	_, err := Update(ctx, cache, source, nil)
	require.NoError(t, err)

	onNetworkMount(t, "smbfs")
	res, err := Update(ctx, cache, source, nil)
	require.NoError(t, err)
	assert.True(t, res.Unchanged)

	store, err := Open(ctx, cache)
	require.NoError(t, err, "reading a cache needs no local-disk check")
	require.NoError(t, store.Close())
}

func TestStaleCacheDetected(t *testing.T) {
	ctx := context.Background()
	cache := filepath.Join(t.TempDir(), "emoji.db")
	_, err := Update(ctx, cache, writeSource(t, sampleSource), nil)
	require.NoError(t, err)

	// Simulate a partial build by dropping rows behind the metadata's back.
	db, err := sql.Open("sqlite", cache)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM emoji WHERE name = 'cat';`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Open(ctx, cache)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Meta(ctx)
	assert.True(t, errors.Is(err, ErrCacheStale))
	assert.True(t, IsUnavailable(err))
}

func TestItems(t *testing.T) {
	items := Items([]Emoji{{Name: "cat", Glyph: "🐱", Category: "animals", Keywords: []string{"animal", "meow"}}})
	require.Len(t, items, 1)
	assert.Equal(t, protocol.Item{
		Title:    "cat",
		Subtitle: "animal meow",
		Badge:    "animals",
		Icon:     protocol.CharacterIcon{Glyph: "🐱"},
		DataText: "🐱",
	}, items[0])
	require.NoError(t, items[0].Validate())
}

func TestUpdateItem(t *testing.T) {
	missing := UpdateItem("'/usr/lib/launchkit/emoji' --update", ErrCacheMissing)
	require.NoError(t, missing.Validate())
	assert.Equal(t, "'/usr/lib/launchkit/emoji' --update", missing.Action)
	assert.Contains(t, missing.Subtitle, "missing")

	stale := UpdateItem("x", ErrCacheStale)
	assert.Contains(t, stale.Subtitle, "incomplete")
}

func TestChecksumIsStable(t *testing.T) {
	assert.Equal(t, Checksum([]byte("abc")), Checksum([]byte("abc")))
	assert.NotEqual(t, Checksum([]byte("abc")), Checksum([]byte("abd")))
}
