package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/launchkit/internal/doctor"
)

func newDoctorCmd(opts *globalOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check plugin requirements and the emoji cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := opts.load()
			if err != nil {
				return err
			}

			result := doctor.New(cfg, reg).Validate(cmd.Context())

			out := cmd.OutOrStdout()
			if jsonOut {
				data, err := doctor.FormatJSON(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, data)
			} else {
				fmt.Fprint(out, styleReport(newTheme(), doctor.FormatHuman(result)))
			}

			if !result.Valid {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// styleReport colors the lines of a doctor report by severity.
func styleReport(t theme, report string) string {
	lines := strings.SplitAfter(report, "\n")
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case body == "":
			continue
		case i == 0:
			lines[i] = t.Summary.Render(body) + nl
		case strings.HasPrefix(strings.TrimSpace(body), "ERROR"):
			lines[i] = t.Error.Render(body) + nl
		case strings.HasPrefix(strings.TrimSpace(body), "WARN"):
			lines[i] = t.Warn.Render(body) + nl
		}
	}
	return strings.Join(lines, "")
}
