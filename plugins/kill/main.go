// Command kill lists running processes, busiest first. Selecting one runs the
// plugin again with --kill <pid>.
package main

import (
	"context"
	"os"
	"strconv"

	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/procs"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

const (
	pluginName = "kill"
	killFlag   = "--kill"
)

type killPlugin struct {
	list        func(ctx context.Context) ([]procs.Process, error)
	kill        func(ctx context.Context, pid int32) error
	selfCommand func(args ...string) (string, error)
}

func (p *killPlugin) handle(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	if len(inv.Args) > 0 && inv.Args[0] == killFlag {
		return p.killPID(ctx, inv)
	}

	// The action prefix is the same for every process, resolve it once.
	self, err := p.selfCommand(killFlag)
	if err != nil {
		return nil, err
	}

	list, err := p.list(ctx)
	if err != nil {
		return nil, err
	}
	inv.Logger.Debug("listed processes", "count", len(list))

	return procs.Items(list, func(pid int32) string {
		return self + " " + strconv.Itoa(int(pid))
	}), nil
}

func (p *killPlugin) killPID(ctx context.Context, inv invoke.Invocation) ([]protocol.Item, error) {
	if len(inv.Args) != 2 {
		return nil, invoke.Usagef("%s takes exactly one pid", killFlag)
	}
	pid, err := strconv.ParseInt(inv.Args[1], 10, 32)
	if err != nil || pid <= 0 {
		return nil, invoke.Usagef("invalid pid %q", inv.Args[1])
	}
	if err := p.kill(ctx, int32(pid)); err != nil {
		return nil, err
	}
	inv.Logger.Info("killed process", "pid", pid)
	return []protocol.Item{}, nil
}

func main() {
	p := &killPlugin{
		list:        procs.List,
		kill:        procs.Kill,
		selfCommand: invoke.SelfCommand,
	}
	os.Exit(invoke.Main(pluginName, p.handle, invoke.Options{AllowEmptyQuery: true}))
}
