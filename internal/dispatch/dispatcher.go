// Package dispatch resolves registered handlers by call shape and invokes
// them with the bound argument list for a phrase event.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voco-sh/voco/internal/vocab"
)

// ResolutionError reports a handler that no registered call shape could
// satisfy. The failing handler is skipped; sibling handlers still attempt.
type ResolutionError struct {
	Action  string
	Handler string
	Shape   Shape
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("action %q: handler %q does not accept shape %s", e.Action, e.Handler, e.Shape)
}

// Dispatcher invokes every registered handler for a resolved action.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// New constructs a dispatcher over a handler registry.
func New(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch invokes each of action's handlers with the bound arguments.
// Resolution misses are logged and skipped. An error returned by a handler
// itself propagates immediately; this layer does not sandbox handler code.
func (d *Dispatcher) Dispatch(ctx context.Context, action vocab.ActionSpec, shape Shape, args []any) error {
	for _, ref := range action.Handlers {
		invocables := d.registry.Lookup(ref)
		if len(invocables) == 0 {
			d.reportMiss(&ResolutionError{Action: action.Trigger, Handler: ref, Shape: shape})
			continue
		}

		for _, h := range invocables {
			target, rerr := resolve(h, shape, len(args))
			if rerr != nil {
				rerr.Action = action.Trigger
				d.reportMiss(rerr)
				continue
			}

			if err := target(ctx, args); err != nil {
				return fmt.Errorf("handler %q for action %q: %w", h.Name(), action.Trigger, err)
			}
		}
	}
	return nil
}

type invocation func(ctx context.Context, args []any) error

// resolve selects the call-shape variant matching the bound argument count,
// and for multi-argument dispatch requires an exact declared-shape match.
func resolve(h Invocable, shape Shape, arity int) (invocation, *ResolutionError) {
	switch arity {
	case 0:
		target, ok := h.(Nullary)
		if !ok {
			return nil, &ResolutionError{Handler: h.Name(), Shape: shape}
		}
		return func(ctx context.Context, _ []any) error {
			return target.Invoke(ctx)
		}, nil
	case 1:
		target, ok := h.(Unary)
		if !ok {
			return nil, &ResolutionError{Handler: h.Name(), Shape: shape}
		}
		return func(ctx context.Context, args []any) error {
			return target.InvokeValue(ctx, args[0])
		}, nil
	default:
		target, ok := h.(Positional)
		if !ok || !acceptsShape(target, shape) {
			return nil, &ResolutionError{Handler: h.Name(), Shape: shape}
		}
		return func(ctx context.Context, args []any) error {
			return target.InvokePositional(ctx, shape, args)
		}, nil
	}
}

// acceptsShape honors a nil enumeration as "any shape".
func acceptsShape(target Positional, shape Shape) bool {
	declared := target.Shapes()
	if declared == nil {
		return true
	}
	for _, candidate := range declared {
		if candidate.Equal(shape) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) reportMiss(err *ResolutionError) {
	if d.logger == nil {
		return
	}
	d.logger.Warn("handler resolution miss",
		"action", err.Action,
		"handler", err.Handler,
		"shape", err.Shape.String(),
	)
}
