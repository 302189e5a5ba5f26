// Command calculator evaluates the query as a Go expression.
package main

import (
	"context"
	"os"

	"github.com/mattjoyce/launchkit/internal/calc"
	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

const pluginName = "calculator"

func handle(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	return calc.Items(ctx, inv.Query, inv.Realtime)
}

func main() {
	os.Exit(invoke.Main(pluginName, handle, invoke.Options{}))
}
