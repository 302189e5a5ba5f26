// Package runner executes the external tools plugins delegate to.
package runner

//go:generate mockgen -source=runner.go -destination=mock_runner.go -package=runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	// maxStderrBytes caps the amount of stderr kept from a failed command.
	maxStderrBytes = 64 * 1024

	// terminationGracePeriod is the time we wait after SIGTERM before the process is killed.
	terminationGracePeriod = 2 * time.Second
)

// ErrNotFound is returned when the executable cannot be located.
var ErrNotFound = errors.New("executable not found")

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

// Runner runs a command to completion and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct {
	// Env is appended to the current environment when set.
	Env    []string
	Logger *slog.Logger
}

// New returns an ExecRunner that logs through logger.
func New(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Logger: logger}
}

// Run executes name with args. Cancelling ctx sends SIGTERM, then SIGKILL
// after a short grace period.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = terminationGracePeriod
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running command", "command", name, "args", args)
	start := time.Now()

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn("command exited with non-zero status", "command", name, "exit_code", exitErr.ExitCode())
			return nil, &ExitError{
				Name:   name,
				Code:   exitErr.ExitCode(),
				Stderr: truncateStderr(stderr.String()),
			}
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	logger.Debug("command finished", "command", name, "duration", time.Since(start), "stdout_bytes", stdout.Len())
	return stdout.Bytes(), nil
}

// truncateStderr truncates stderr to maxStderrBytes.
func truncateStderr(s string) string {
	if len(s) > maxStderrBytes {
		return s[:maxStderrBytes]
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
