// Package emoji keeps a local SQLite copy of an emoji table and turns it into
// result items. The cache is refreshed out-of-band by an explicit update.
package emoji

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Emoji is one row of the emoji table.
type Emoji struct {
	Name     string
	Glyph    string
	Category string
	Keywords []string
}

// sourceEntry is the per-emoji value in an emojilib style emojis.json.
type sourceEntry struct {
	Char     *string  `json:"char"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

// ParseSource reads an emojis.json document: an object keyed by emoji name.
// Key order is kept. Entries without a character are skipped.
func ParseSource(r io.Reader) ([]Emoji, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read emoji source: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("emoji source must be a JSON object keyed by name")
	}

	var out []Emoji
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read emoji name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in emoji source", tok)
		}

		var entry sourceEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode emoji %q: %w", name, err)
		}
		if entry.Char == nil || *entry.Char == "" {
			continue
		}
		out = append(out, Emoji{
			Name:     name,
			Glyph:    *entry.Char,
			Category: entry.Category,
			Keywords: entry.Keywords,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read emoji source end: %w", err)
	}
	return out, nil
}

// Fetch opens source, which is either an http(s) URL or a local file path.
func Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open emoji source: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build emoji source request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch emoji source: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch emoji source: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
