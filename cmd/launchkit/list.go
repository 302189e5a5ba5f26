package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type pluginSummary struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Version      string   `json:"version,omitempty"`
	Badge        string   `json:"badge,omitempty"`
	Realtime     bool     `json:"realtime"`
	Path         string   `json:"path"`
	Missing      []string `json:"missing_requirements,omitempty"`
	EntrypointOK bool     `json:"entrypoint_ok"`
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := opts.load()
			if err != nil {
				return err
			}

			summaries := make([]pluginSummary, 0)
			for _, p := range reg.All() {
				s := pluginSummary{
					Name:         p.Name,
					Title:        p.Title,
					Version:      p.Version,
					Badge:        p.Badge,
					Realtime:     p.Realtime,
					Path:         p.Path,
					EntrypointOK: p.CheckEntrypoint() == nil,
				}
				for req := range p.MissingRequirements() {
					s.Missing = append(s.Missing, req)
				}
				sort.Strings(s.Missing)
				summaries = append(summaries, s)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				data, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(summaries) == 0 {
				fmt.Fprintln(out, "No plugins found.")
				return nil
			}
			fmt.Fprint(out, renderPluginTable(newTheme(), summaries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderPluginTable(t theme, summaries []pluginSummary) string {
	const (
		nameW    = 22
		titleW   = 18
		versionW = 9
		badgeW   = 8
	)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		column(t.Header, nameW, "NAME"),
		column(t.Header, titleW, "TITLE"),
		column(t.Header, versionW, "VERSION"),
		column(t.Header, badgeW, "BADGE"),
		t.Header.Render("STATUS"),
	))
	b.WriteString("\n")

	for _, s := range summaries {
		name := s.Name
		if s.Realtime {
			name += " ⚡"
		}

		var status string
		switch {
		case len(s.Missing) > 0:
			status = t.Error.Render("missing " + strings.Join(s.Missing, ", "))
		case !s.EntrypointOK:
			status = t.Warn.Render("not built")
		default:
			status = t.OK.Render("ready")
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			column(t.Name, nameW, name),
			column(lipgloss.NewStyle(), titleW, s.Title),
			column(t.Dim, versionW, s.Version),
			column(t.Badge, badgeW, s.Badge),
			status,
		))
		b.WriteString("\n")
	}
	return b.String()
}
