// Command windows-switcher lists open windows; selecting one activates it.
package main

import (
	"context"
	"os"

	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/runner"
	"github.com/mattjoyce/launchkit/internal/windows"
)

const pluginName = "windows-switcher"

type switcherPlugin struct {
	runner runner.Runner // nil means run the real command
}

func (p *switcherPlugin) handle(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	r := p.runner
	if r == nil {
		r = runner.New(inv.Logger)
	}
	s := &windows.Switcher{Runner: r, Command: inv.Config.Windows.Command}

	wins, desktops, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	inv.Logger.Debug("listed windows", "windows", len(wins), "desktops", len(desktops))
	return s.Items(wins, desktops), nil
}

func main() {
	p := &switcherPlugin{}
	os.Exit(invoke.Main(pluginName, p.handle, invoke.Options{AllowEmptyQuery: true}))
}
