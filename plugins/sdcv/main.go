// Command sdcv looks the query up in the local StarDict dictionaries.
package main

import (
	"context"
	"os"

	"github.com/mattjoyce/launchkit/internal/dictionary"
	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/runner"
)

const pluginName = "sdcv"

type lookupPlugin struct {
	runner runner.Runner // nil means run the real command
}

func (p *lookupPlugin) handle(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	r := p.runner
	if r == nil {
		r = runner.New(inv.Logger)
	}
	cfg := inv.Config.Dictionary

	// Fuzzy matching while typing; exact lookup once the query is committed.
	records, err := dictionary.New(r, cfg.Command).Lookup(ctx, inv.Query, inv.Realtime)
	if err != nil {
		return nil, err
	}
	inv.Logger.Debug("dictionary lookup", "records", len(records))

	return dictionary.Items(records, dictionary.ItemOptions{
		Separator:        cfg.Separator,
		Icon:             cfg.Icon,
		MaxSubtitleWidth: cfg.MaxSubtitleWidth,
	}), nil
}

func main() {
	p := &lookupPlugin{}
	os.Exit(invoke.Main(pluginName, p.handle, invoke.Options{}))
}
