package dispatch

import "context"

// Invocable is one registered handler target. Concrete handlers additionally
// implement the call-shape variants they support; dispatch selects the
// variant from the bound argument count, never from runtime introspection.
type Invocable interface {
	Name() string
}

// Nullary handles zero-argument dispatch.
type Nullary interface {
	Invocable
	Invoke(ctx context.Context) error
}

// Unary handles single-argument dispatch. The value is the bound argument's
// coerced result: a scalar, or an ordered []any for a collection argument.
type Unary interface {
	Invocable
	InvokeValue(ctx context.Context, value any) error
}

// Positional handles multi-argument dispatch. Shapes enumerates the accepted
// call forms as data; a nil enumeration accepts any shape.
type Positional interface {
	Invocable
	Shapes() []Shape
	InvokePositional(ctx context.Context, shape Shape, args []any) error
}

type nullaryFunc struct {
	name string
	fn   func(context.Context) error
}

func (h nullaryFunc) Name() string                     { return h.name }
func (h nullaryFunc) Invoke(ctx context.Context) error { return h.fn(ctx) }

// NullaryFunc adapts a function to a zero-argument handler.
func NullaryFunc(name string, fn func(context.Context) error) Invocable {
	return nullaryFunc{name: name, fn: fn}
}

type unaryFunc struct {
	name string
	fn   func(context.Context, any) error
}

func (h unaryFunc) Name() string { return h.name }
func (h unaryFunc) InvokeValue(ctx context.Context, value any) error {
	return h.fn(ctx, value)
}

// UnaryFunc adapts a function to a single-argument handler.
func UnaryFunc(name string, fn func(context.Context, any) error) Invocable {
	return unaryFunc{name: name, fn: fn}
}

type positionalFunc struct {
	name   string
	shapes []Shape
	fn     func(context.Context, Shape, []any) error
}

func (h positionalFunc) Name() string    { return h.name }
func (h positionalFunc) Shapes() []Shape { return h.shapes }
func (h positionalFunc) InvokePositional(ctx context.Context, shape Shape, args []any) error {
	return h.fn(ctx, shape, args)
}

// PositionalFunc adapts a function to a multi-argument handler accepting the
// declared shapes.
func PositionalFunc(name string, shapes []Shape, fn func(context.Context, Shape, []any) error) Invocable {
	return positionalFunc{name: name, shapes: shapes, fn: fn}
}
