// Command emoji searches a local emoji cache by name and keyword. Run it with
// --update [source] to (re)build the cache.
package main

import (
	"context"
	"os"

	"github.com/mattjoyce/launchkit/internal/emoji"
	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

const (
	pluginName = "emoji"
	updateFlag = "--update"
)

type emojiPlugin struct {
	selfCommand func(args ...string) (string, error)
}

func (p *emojiPlugin) handle(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	if len(inv.Args) > 0 && inv.Args[0] == updateFlag {
		return p.update(ctx, inv)
	}

	path := inv.Config.EmojiCachePath()
	store, err := emoji.Open(ctx, path)
	if err != nil {
		return p.unavailable(inv, err)
	}
	defer store.Close()

	if _, err := store.Meta(ctx); err != nil {
		return p.unavailable(inv, err)
	}

	found, err := store.Search(ctx, inv.Query)
	if err != nil {
		return nil, err
	}
	return emoji.Items(found), nil
}

// unavailable turns a missing or stale cache into a single update item.
func (p *emojiPlugin) unavailable(inv invoke.Invocation, err error) ([]protocol.Item, error) {
	if !emoji.IsUnavailable(err) {
		return nil, err
	}
	inv.Logger.Info("emoji cache unavailable", "error", err)

	action, aerr := p.selfCommand(updateFlag)
	if aerr != nil {
		return nil, aerr
	}
	return []protocol.Item{emoji.UpdateItem(action, err)}, nil
}

func (p *emojiPlugin) update(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	if len(inv.Args) > 2 {
		return nil, invoke.Usagef("%s takes at most one source argument", updateFlag)
	}
	source := inv.Config.Emoji.SourceURL
	if len(inv.Args) == 2 {
		source = inv.Args[1]
	}

	res, err := emoji.Update(ctx, inv.Config.EmojiCachePath(), source, inv.Logger)
	if err != nil {
		return nil, err
	}
	inv.Logger.Info("emoji update finished", "entries", res.Entries, "unchanged", res.Unchanged)
	return []protocol.Item{}, nil
}

func main() {
	p := &emojiPlugin{selfCommand: invoke.SelfCommand}
	os.Exit(invoke.Main(pluginName, p.handle, invoke.Options{AllowEmptyQuery: true}))
}
