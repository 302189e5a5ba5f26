package invoke

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/launchkit/internal/config"
	"github.com/mattjoyce/launchkit/internal/protocol"
)

func testConfig(mutate func(*config.Config)) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		cfg := &config.Config{
			Log:     config.LogConfig{Level: "error", Format: "discard"},
			Output:  config.OutputConfig{Format: "array"},
			Timeout: time.Second,
			ArgType: "text",
		}
		if mutate != nil {
			mutate(cfg)
		}
		return cfg, nil
	}
}

func TestRunWritesResults(t *testing.T) {
	var stdout bytes.Buffer
	var got Invocation

	code := Run(context.Background(), Env{
		Args:       []string{"hello"},
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "echo", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		got = inv
		return []protocol.Item{{Title: inv.Query}}, nil
	}, Options{})

	require.Equal(t, ExitOK, code)
	assert.Equal(t, "[{\"title\":\"hello\"}]\n", stdout.String())
	assert.Equal(t, "hello", got.Query)
	assert.Equal(t, "echo", got.Plugin)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Realtime)
	assert.NotNil(t, got.Logger)
}

func TestRunRealtimeAndObjectFormat(t *testing.T) {
	var stdout bytes.Buffer
	var realtime bool

	code := Run(context.Background(), Env{
		Args:   []string{"cat"},
		Stdout: &stdout,
		LoadConfig: testConfig(func(c *config.Config) {
			c.ArgType = config.RealtimeArgType
			c.Output.Format = "object"
		}),
	}, "sdcv", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		realtime = inv.Realtime
		return nil, nil
	}, Options{})

	require.Equal(t, ExitOK, code)
	assert.True(t, realtime)
	assert.Equal(t, "{\"results\":[]}\n", stdout.String())
}

func TestRunMissingQuery(t *testing.T) {
	var stdout bytes.Buffer
	called := false

	code := Run(context.Background(), Env{
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "sdcv", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		called = true
		return nil, nil
	}, Options{})

	assert.Equal(t, ExitUsage, code)
	assert.False(t, called)
	assert.Empty(t, stdout.String())
}

func TestRunAllowEmptyQuery(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "kill", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		return []protocol.Item{{Title: "process"}}, nil
	}, Options{AllowEmptyQuery: true})

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout.String(), "process")
}

func TestRunHandlerErrorWritesNothing(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Args:       []string{"x"},
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "sdcv", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		return []protocol.Item{{Title: "partial"}}, errors.New("sdcv: executable not found")
	}, Options{})

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
}

func TestRunUsageErrorFromHandler(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Args:       []string{"--kill", "abc"},
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "kill", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		return nil, Usagef("invalid pid %q", inv.Args[1])
	}, Options{})

	assert.Equal(t, ExitUsage, code)
	assert.Empty(t, stdout.String())
}

func TestRunInvalidItem(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Args:       []string{"x"},
		Stdout:     &stdout,
		LoadConfig: testConfig(nil),
	}, "broken", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		return []protocol.Item{{Title: ""}}, nil
	}, Options{})

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
}

func TestRunConfigError(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Args:   []string{"x"},
		Stdout: &stdout,
		LoadConfig: func() (*config.Config, error) {
			return nil, errors.New("config: validate: timeout must be positive")
		},
	}, "sdcv", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		t.Fatal("handler must not run")
		return nil, nil
	}, Options{})

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
}

func TestRunAppliesTimeout(t *testing.T) {
	var stdout bytes.Buffer
	code := Run(context.Background(), Env{
		Args:   []string{"x"},
		Stdout: &stdout,
		LoadConfig: testConfig(func(c *config.Config) {
			c.Timeout = 20 * time.Millisecond
		}),
	}, "slow", func(ctx context.Context, inv Invocation) ([]protocol.Item, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, Options{})

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
}
