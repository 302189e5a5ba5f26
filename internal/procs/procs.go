// Package procs lists running processes for the kill plugin and kills the one
// the user picks.
package procs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"

	"github.com/mattjoyce/launchkit/internal/protocol"
)

const (
	// statWorkers bounds concurrent /proc reads.
	statWorkers = 16

	maxTitleWidth = 160
)

// Process is a snapshot of one process.
type Process struct {
	PID     int32
	Cmdline string
	CPU     float64
	Mem     float32
	Status  string
}

// List snapshots all processes, busiest first (CPU, then memory). Processes
// that exit or cannot be read while listing are skipped.
func List(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	snaps := make([]*Process, len(procs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statWorkers)
	for i, p := range procs {
		g.Go(func() error {
			snap, err := describe(gctx, p)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return nil
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	out := make([]Process, 0, len(snaps))
	for _, s := range snaps {
		if s != nil {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CPU != out[j].CPU {
			return out[i].CPU > out[j].CPU
		}
		return out[i].Mem > out[j].Mem
	})
	return out, nil
}

func describe(ctx context.Context, p *process.Process) (*Process, error) {
	cmdline, err := p.CmdlineWithContext(ctx)
	if err != nil || strings.TrimSpace(cmdline) == "" {
		// Kernel threads have no command line.
		name, nerr := p.NameWithContext(ctx)
		if nerr != nil {
			return nil, errors.Join(err, nerr)
		}
		cmdline = "[" + name + "]"
	}
	cpu, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	mem, err := p.MemoryPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Process{
		PID:     p.Pid,
		Cmdline: cmdline,
		CPU:     cpu,
		Mem:     mem,
		Status:  strings.Join(status, ","),
	}, nil
}

// Kill sends SIGKILL to pid.
func Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("kill process %d: %w", pid, err)
	}
	return nil
}

// Items adapts processes to result items. action builds the command that
// kills a given pid.
func Items(procs []Process, action func(pid int32) string) []protocol.Item {
	items := make([]protocol.Item, 0, len(procs))
	for _, p := range procs {
		items = append(items, protocol.Item{
			Title:    runewidth.Truncate(p.Cmdline, maxTitleWidth, "…"),
			Subtitle: fmt.Sprintf("%d, CPU %.1f%%, MEM %.1f%%, %s", p.PID, p.CPU, p.Mem, p.Status),
			Action:   action(p.PID),
		})
	}
	return items
}
