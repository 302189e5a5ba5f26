// Package windows lists top-level X11 windows through wmctrl so the user can
// switch to one.
package windows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattjoyce/launchkit/internal/invoke"
	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/runner"
)

// Window is one line of `wmctrl -l -x`.
type Window struct {
	ID      string
	Desktop int // -1 for sticky windows
	Class   string
	Host    string
	Title   string
}

// Switcher talks to a wmctrl-compatible command.
type Switcher struct {
	Runner  runner.Runner
	Command string
}

// List returns the managed windows and the desktop names keyed by index.
// Desktop names are best effort; failing to read them is not an error.
func (s *Switcher) List(ctx context.Context) ([]Window, map[int]string, error) {
	out, err := s.Runner.Run(ctx, s.Command, "-l", "-x")
	if err != nil {
		return nil, nil, fmt.Errorf("list windows: %w", err)
	}
	wins := ParseWindows(string(out))

	desktops := map[int]string{}
	if out, err := s.Runner.Run(ctx, s.Command, "-d"); err == nil {
		desktops = ParseDesktops(string(out))
	}
	return wins, desktops, nil
}

// Items adapts windows to result items; selecting one activates the window.
func (s *Switcher) Items(wins []Window, desktops map[int]string) []protocol.Item {
	items := make([]protocol.Item, 0, len(wins))
	for _, w := range wins {
		title := w.Title
		if title == "" {
			title = w.Class
		}
		if title == "" {
			title = w.ID
		}
		item := protocol.Item{
			Title:  title,
			Badge:  w.Class,
			Action: invoke.ShellCommand(s.Command, "-i", "-a", w.ID),
		}
		if name, ok := desktops[w.Desktop]; ok {
			item.Subtitle = "Workspace " + name
		}
		items = append(items, item)
	}
	return items
}

// ParseWindows parses `wmctrl -l -x` output. Lines that do not have the
// expected columns are skipped.
func ParseWindows(out string) []Window {
	var wins []Window
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasPrefix(fields[0], "0x") {
			continue
		}
		desktop, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		wins = append(wins, Window{
			ID:      fields[0],
			Desktop: desktop,
			Class:   classGroup(fields[2]),
			Host:    fields[3],
			Title:   restAfterFields(line, 4),
		})
	}
	return wins
}

// ParseDesktops parses `wmctrl -d` output into index -> name.
func ParseDesktops(out string) map[int]string {
	desktops := map[int]string{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		for i, f := range fields {
			if f != "WA:" || i+1 >= len(fields) {
				continue
			}
			skip := i + 3 // "WA: x,y WxH name"
			if fields[i+1] == "N/A" {
				skip = i + 2
			}
			if skip < len(fields) {
				desktops[idx] = restAfterFields(line, skip)
			}
			break
		}
	}
	return desktops
}

// classGroup returns the class part of an "instance.Class" WM_CLASS pair.
// Both halves may contain dots, as in "org.gnome.Nautilus.Org.gnome.Nautilus";
// when the pair splits into two case-insensitively equal halves the split is
// taken there, otherwise at the first dot.
func classGroup(wmClass string) string {
	if n := len(wmClass); n%2 == 1 {
		mid := n / 2
		if wmClass[mid] == '.' && strings.EqualFold(wmClass[:mid], wmClass[mid+1:]) {
			return wmClass[mid+1:]
		}
	}
	if _, class, ok := strings.Cut(wmClass, "."); ok && class != "" {
		return class
	}
	return wmClass
}

// restAfterFields returns line with its first n whitespace-separated fields
// removed, keeping the spacing inside the remainder.
func restAfterFields(line string, n int) string {
	rest := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " \t")
	}
	return rest
}
