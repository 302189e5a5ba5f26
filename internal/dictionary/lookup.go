package dictionary

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/runner"
)

const (
	DefaultCommand   = "sdcv"
	DefaultSeparator = "; "
	DefaultIcon      = "stardict.png"

	// fuzzyPrefix asks sdcv for a fuzzy match instead of an exact one.
	fuzzyPrefix = "/"
)

// Dictionary looks terms up through an sdcv-compatible command.
type Dictionary struct {
	Runner  runner.Runner
	Command string
}

// New returns a Dictionary that runs command through r.
func New(r runner.Runner, command string) *Dictionary {
	if command == "" {
		command = DefaultCommand
	}
	return &Dictionary{Runner: r, Command: command}
}

// LookupTerm returns the term as it is passed to the lookup command.
func LookupTerm(term string, fuzzy bool) string {
	if fuzzy {
		return fuzzyPrefix + term
	}
	return term
}

// Lookup runs the lookup command non-interactively and parses its output.
// An error means the command could not run or failed; no matches is an empty
// result with a nil error.
func (d *Dictionary) Lookup(ctx context.Context, term string, fuzzy bool) ([]Record, error) {
	args := []string{"--utf8-output", "--utf8-input", "-n", LookupTerm(term, fuzzy)}
	out, err := d.Runner.Run(ctx, d.Command, args...)
	if err != nil {
		return nil, fmt.Errorf("dictionary lookup %q: %w", term, err)
	}
	return Parse(string(out)), nil
}

// ItemOptions controls how records are presented.
type ItemOptions struct {
	Separator        string
	Icon             string
	MaxSubtitleWidth int // display cells; 0 disables truncation
}

// Items adapts records to result items, one per record, in order.
func Items(records []Record, opts ItemOptions) []protocol.Item {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	items := make([]protocol.Item, 0, len(records))
	for _, rec := range records {
		subtitle := strings.Join(rec.Definitions, opts.Separator)
		if opts.MaxSubtitleWidth > 0 {
			subtitle = runewidth.Truncate(subtitle, opts.MaxSubtitleWidth, "…")
		}
		item := protocol.Item{
			Title:    rec.Headword,
			Subtitle: subtitle,
			Badge:    rec.Source,
		}
		if opts.Icon != "" {
			item.Icon = protocol.FileIcon{Path: opts.Icon}
		}
		items = append(items, item)
	}
	return items
}
