// Package doctor checks that the configured plugins can actually run on this
// machine.
package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattjoyce/launchkit/internal/config"
	"github.com/mattjoyce/launchkit/internal/emoji"
	"github.com/mattjoyce/launchkit/internal/plugin"
	"github.com/mattjoyce/launchkit/internal/storage"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Plugin   string `json:"plugin,omitempty"`
}

// Doctor validates the discovered plugins against the host system.
type Doctor struct {
	cfg      *config.Config
	registry *plugin.Registry
	checkDir func(dir string) error
}

// New creates a Doctor from a loaded config and plugin registry.
func New(cfg *config.Config, registry *plugin.Registry) *Doctor {
	return &Doctor{cfg: cfg, registry: registry, checkDir: storage.CheckLocalDir}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate(ctx context.Context) *Result {
	r := &Result{Valid: true}

	d.validatePluginsDir(r)
	d.validateRequirements(r)
	d.warnUnbuilt(r)
	d.checkEmojiCache(ctx, r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, plugin, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Plugin: plugin, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, plugin, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Plugin: plugin, Message: msg})
}

func (d *Doctor) validatePluginsDir(r *Result) {
	if d.cfg.PluginsDir == "" {
		d.addError(r, "config", "", "plugins_dir is required")
		return
	}
	if len(d.registry.All()) == 0 {
		d.addWarning(r, "config", "", fmt.Sprintf("no plugins found under %s", d.cfg.PluginsDir))
	}
}

// validateRequirements reports every manifest requirement missing here.
func (d *Doctor) validateRequirements(r *Result) {
	for _, p := range d.registry.All() {
		missing := p.MissingRequirements()
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.addError(r, "requirements", p.Name, fmt.Sprintf("%s: %v", k, missing[k]))
		}
	}
}

// warnUnbuilt flags plugins whose entrypoint cannot be executed yet.
func (d *Doctor) warnUnbuilt(r *Result) {
	for _, p := range d.registry.All() {
		if err := p.CheckEntrypoint(); err != nil {
			d.addWarning(r, "entrypoint", p.Name, err.Error())
		}
	}
}

// checkEmojiCache reports a cache the emoji plugin would refuse to serve from.
// A missing or stale cache is a warning: the plugin offers its own update item.
func (d *Doctor) checkEmojiCache(ctx context.Context, r *Result) {
	if _, ok := d.registry.Get("emoji"); !ok {
		return
	}
	path := d.cfg.EmojiCachePath()

	if err := d.checkDir(filepath.Dir(path)); errors.Is(err, storage.ErrNetworkFilesystem) {
		d.addWarning(r, "emoji_cache", "emoji", fmt.Sprintf("%v; --update will refuse to rebuild the cache there", err))
	}

	store, err := emoji.Open(ctx, path)
	if err != nil {
		d.reportCacheErr(r, path, err)
		return
	}
	defer store.Close()

	meta, err := store.Meta(ctx)
	if err != nil {
		d.reportCacheErr(r, path, err)
		return
	}
	if meta.Source != d.cfg.Emoji.SourceURL {
		d.addWarning(r, "emoji_cache", "emoji",
			fmt.Sprintf("cache was built from %s, config points at %s", meta.Source, d.cfg.Emoji.SourceURL))
	}
}

func (d *Doctor) reportCacheErr(r *Result, path string, err error) {
	switch {
	case errors.Is(err, emoji.ErrCacheMissing):
		d.addWarning(r, "emoji_cache", "emoji", fmt.Sprintf("no cache at %s; run the emoji plugin with --update", path))
	case errors.Is(err, emoji.ErrCacheStale):
		d.addWarning(r, "emoji_cache", "emoji", fmt.Sprintf("cache at %s is stale: %v", path, err))
	case errors.Is(err, os.ErrPermission):
		d.addError(r, "emoji_cache", "emoji", fmt.Sprintf("cannot read cache: %v", err))
	default:
		d.addError(r, "emoji_cache", "emoji", err.Error())
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("All plugins ready.\n")
		return b.String()
	}

	if r.Valid {
		fmt.Fprintf(&b, "All plugins ready (%d warning(s))\n", len(r.Warnings))
	} else {
		fmt.Fprintf(&b, "Problems found (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		b.WriteString("  ERROR " + formatIssue(e) + "\n")
	}
	for _, w := range r.Warnings {
		b.WriteString("  WARN  " + formatIssue(w) + "\n")
	}

	return b.String()
}

func formatIssue(i Issue) string {
	if i.Plugin != "" {
		return fmt.Sprintf("[%s] %s: %s", i.Category, i.Plugin, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Category, i.Message)
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
