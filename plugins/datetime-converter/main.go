// Command datetime-converter shows a date or timestamp typed into the
// launcher in several common representations.
package main

import (
	"context"
	"os"

	"github.com/mattjoyce/launchkit/internal/datetime"
	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

const pluginName = "datetime-converter"

type converterPlugin struct {
	conv *datetime.Converter
}

func (p *converterPlugin) handle(_ context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	items := p.conv.Items(inv.Query)
	if len(items) == 0 {
		inv.Logger.Debug("query is not a date")
	}
	return items, nil
}

func main() {
	p := &converterPlugin{conv: datetime.New()}
	os.Exit(invoke.Main(pluginName, p.handle, invoke.Options{}))
}
