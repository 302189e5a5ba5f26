package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/launchkit/internal/config"
	"github.com/mattjoyce/launchkit/internal/log"
	"github.com/mattjoyce/launchkit/internal/protocol"
	"github.com/mattjoyce/launchkit/internal/runner"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		realtime bool
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "run [flags] <plugin> [args...]",
		Short: "Run a plugin like the launcher host and validate its output",
		Long: "Run a plugin with the given arguments (the first is the query), capture its\n" +
			"stdout, and check that it is a valid results document.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := opts.load()
			if err != nil {
				return err
			}

			name := args[0]
			p, ok := reg.Get(name)
			if !ok {
				return &exitError{code: 2, err: fmt.Errorf("plugin %q not found", name)}
			}
			if err := p.CheckEntrypoint(); err != nil {
				return fmt.Errorf("plugin %q: %w", name, err)
			}

			argType := "text"
			if realtime {
				argType = config.RealtimeArgType
			}
			r := runner.New(log.WithPlugin(name))
			r.Env = []string{"MINIONS_ARG_TYPE=" + argType}

			ctx := cmd.Context()
			stdout, err := r.Run(ctx, p.Entrypoint, args[1:]...)
			if err != nil {
				var exitErr *runner.ExitError
				if errors.As(err, &exitErr) && exitErr.Stderr != "" {
					fmt.Fprint(cmd.ErrOrStderr(), exitErr.Stderr)
				}
				return fmt.Errorf("plugin %q failed: %w", name, err)
			}

			items, err := protocol.Decode(bytes.NewReader(stdout))
			if err != nil {
				return fmt.Errorf("plugin %q wrote an invalid results document: %w", name, err)
			}

			out := cmd.OutOrStdout()
			if raw {
				return protocol.Write(out, items, cfg.OutputFormat())
			}
			renderItems(out, newTheme(), items)
			return nil
		},
	}
	// Everything after the plugin name belongs to the plugin, including --flags.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&realtime, "realtime", false, "Invoke as the host does while the user is typing")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the validated results document instead of a summary")
	return cmd
}

func renderItems(w io.Writer, t theme, items []protocol.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, t.Dim.Render("(no results)"))
		return
	}
	for i, it := range items {
		line := fmt.Sprintf("%2d. %s", i+1, t.Name.Render(it.Title))
		if it.Badge != "" {
			line += " " + t.Badge.Render("["+it.Badge+"]")
		}
		fmt.Fprintln(w, line)
		if it.Subtitle != "" {
			fmt.Fprintln(w, "    "+t.Dim.Render(it.Subtitle))
		}
		switch {
		case it.Action != "":
			fmt.Fprintln(w, "    action: "+it.Action)
		case it.DataText != "":
			fmt.Fprintln(w, "    copies: "+it.DataText)
		case it.Data != "":
			fmt.Fprintln(w, "    data: "+strings.TrimSpace(it.Data))
		}
	}
}
