// Package calc evaluates a query as a Go expression.
package calc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/mattjoyce/launchkit/internal/protocol"
)

// mathSymbols is the only package an expression may use.
const mathSymbols = "math/math"

// ErrNoValue is returned for input that evaluates to nothing, such as a declaration.
var ErrNoValue = errors.New("expression has no value")

// Eval evaluates expr with the math package in scope and returns the result as text.
func Eval(ctx context.Context, expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", ErrNoValue
	}

	// stdout carries the result protocol; builtins like println must not reach it.
	i := interp.New(interp.Options{Stdout: io.Discard, Stderr: io.Discard})
	if err := i.Use(interp.Exports{mathSymbols: stdlib.Symbols[mathSymbols]}); err != nil {
		return "", fmt.Errorf("failed to load math symbols: %w", err)
	}
	if _, err := i.EvalWithContext(ctx, `import "math"`); err != nil {
		return "", fmt.Errorf("failed to import math: %w", err)
	}

	v, err := i.EvalWithContext(ctx, expr)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	if !v.IsValid() || (v.Kind() == reflect.Func) {
		return "", ErrNoValue
	}
	return fmt.Sprint(v.Interface()), nil
}

// Items evaluates expr and returns a single result item. In realtime mode an
// expression that does not evaluate yet is no result rather than a failure.
func Items(ctx context.Context, expr string, realtime bool) ([]protocol.Item, error) {
	result, err := Eval(ctx, expr)
	if err != nil {
		if realtime && ctx.Err() == nil {
			return []protocol.Item{}, nil
		}
		return nil, err
	}
	return []protocol.Item{{
		Title:    result,
		Subtitle: expr,
		DataText: result,
	}}, nil
}
