// Command launchkit lists, checks and exercises launcher plugins outside the
// launcher host.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/launchkit/internal/config"
	"github.com/mattjoyce/launchkit/internal/log"
	"github.com/mattjoyce/launchkit/internal/plugin"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	pluginDirs []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "launchkit",
		Short:         "Develop and check launcher plugins",
		Long:          "launchkit discovers launcher plugins, checks their requirements, and runs them\nthe way the launcher host would, validating their results document.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $"+config.PathEnv+" or ~/.config/launchkit/config.yaml)")
	root.PersistentFlags().StringSliceVar(&opts.pluginDirs, "plugins-dir", nil, "plugin root to scan (repeatable; overrides plugins_dir)")

	root.AddCommand(
		newListCmd(opts),
		newDoctorCmd(opts),
		newRunCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads config and discovers plugins for a subcommand.
func (o *globalOptions) load() (*config.Config, *plugin.Registry, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	log.Setup(cfg.Log.Level, cfg.Log.Format)

	roots := o.pluginDirs
	if len(roots) == 0 {
		roots = []string{cfg.PluginsDir}
	}
	reg, err := plugin.DiscoverMany(roots, log.WithComponent("discovery"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}
