// Package invoke is the shared entry point of every launcher plugin: it reads
// the query, loads config, runs the plugin's handler, and writes the results
// document as the only output on stdout.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/mattjoyce/launchkit/internal/config"
	"github.com/mattjoyce/launchkit/internal/log"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

// Exit codes reported to the host.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks invocation errors: a missing or malformed argument.
var ErrUsage = errors.New("usage error")

// Usagef returns an error wrapping ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Invocation is everything a plugin handler gets to see about one run.
type Invocation struct {
	Plugin   string
	ID       string
	Query    string   // argv[1], empty when absent
	Args     []string // argv[1:]
	Realtime bool     // the host is querying as the user types
	Config   *config.Config
	Logger   *slog.Logger
}

// Handler produces the result items for one invocation.
type Handler func(ctx context.Context, inv Invocation) ([]protocol.Item, error)

// Options tunes how Main treats the command line.
type Options struct {
	// AllowEmptyQuery lets the plugin run without argv[1].
	AllowEmptyQuery bool
}

// Env is the process environment Run works against.
type Env struct {
	Args       []string // argv without the program name
	Stdout     io.Writer
	LoadConfig func() (*config.Config, error)
}

// Main runs h as a plugin process and returns the exit code.
func Main(plugin string, h Handler, opts Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, Env{
		Args:       os.Args[1:],
		Stdout:     os.Stdout,
		LoadConfig: config.Load,
	}, plugin, h, opts)
}

// Run is Main with an explicit environment.
func Run(ctx context.Context, env Env, plugin string, h Handler, opts Options) int {
	cfg, err := env.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", plugin, err)
		return ExitFailure
	}
	log.Setup(cfg.Log.Level, cfg.Log.Format)

	inv := Invocation{
		Plugin:   plugin,
		ID:       uuid.NewString(),
		Args:     env.Args,
		Realtime: cfg.Realtime(),
		Config:   cfg,
	}
	inv.Logger = log.WithInvocation(plugin, inv.ID)
	if len(env.Args) > 0 {
		inv.Query = env.Args[0]
	}

	if strings.TrimSpace(inv.Query) == "" && !opts.AllowEmptyQuery {
		inv.Logger.Error("missing query argument")
		fmt.Fprintf(os.Stderr, "usage: %s <query>\n", plugin)
		return ExitUsage
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	inv.Logger.Debug("invocation started", "query", inv.Query, "realtime", inv.Realtime)

	items, err := h(ctx, inv)
	if err != nil {
		inv.Logger.Error("plugin failed", "error", err)
		if errors.Is(err, ErrUsage) {
			return ExitUsage
		}
		return ExitFailure
	}

	if err := protocol.Write(env.Stdout, items, cfg.OutputFormat()); err != nil {
		inv.Logger.Error("failed to write results", "error", err)
		return ExitFailure
	}

	inv.Logger.Debug("invocation finished", "items", len(items))
	return ExitOK
}
