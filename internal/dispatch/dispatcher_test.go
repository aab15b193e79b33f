package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voco-sh/voco/internal/coerce"
	"github.com/voco-sh/voco/internal/vocab"
)

type recordingHandler struct {
	name    string
	shapes  []Shape
	invokes int
	values  []any
	lists   [][]any
	err     error
}

func (h *recordingHandler) Name() string    { return h.name }
func (h *recordingHandler) Shapes() []Shape { return h.shapes }

func (h *recordingHandler) Invoke(context.Context) error {
	h.invokes++
	return h.err
}

func (h *recordingHandler) InvokeValue(_ context.Context, value any) error {
	h.values = append(h.values, value)
	return h.err
}

func (h *recordingHandler) InvokePositional(_ context.Context, _ Shape, args []any) error {
	h.lists = append(h.lists, args)
	return h.err
}

func TestDispatchNullary(t *testing.T) {
	registry := NewRegistry()
	h := &recordingHandler{name: "stopper"}
	registry.Register("stopper", h)

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "stop", Handlers: []string{"stopper"}}
	require.NoError(t, d.Dispatch(context.Background(), action, nil, nil))
	require.Equal(t, 1, h.invokes)
}

func TestDispatchUnaryPassesValueDirectly(t *testing.T) {
	registry := NewRegistry()
	h := &recordingHandler{name: "mover"}
	registry.Register("mover", h)

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "move", Handlers: []string{"mover"}}
	shape := Shape{{Tag: coerce.TagFloat64}}
	require.NoError(t, d.Dispatch(context.Background(), action, shape, []any{2.5}))
	require.Equal(t, []any{2.5}, h.values)
	require.Empty(t, h.lists)
}

func TestDispatchPositionalExactShapeMatch(t *testing.T) {
	registry := NewRegistry()
	shape := Shape{{Tag: coerce.TagString}, {Tag: coerce.TagFloat64}}
	h := &recordingHandler{name: "mover", shapes: []Shape{shape}}
	registry.Register("mover", h)

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "move", Handlers: []string{"mover"}}
	require.NoError(t, d.Dispatch(context.Background(), action, shape, []any{"left", 2.5}))
	require.Equal(t, [][]any{{"left", 2.5}}, h.lists)
}

func TestDispatchShapeMismatchSkipsHandlerAndSiblingsRun(t *testing.T) {
	registry := NewRegistry()
	offered := Shape{{Tag: coerce.TagString}, {Tag: coerce.TagFloat64}}

	mismatched := &recordingHandler{name: "typed", shapes: []Shape{{{Tag: coerce.TagInt}, {Tag: coerce.TagInt}}}}
	anyShape := &recordingHandler{name: "loose"}
	registry.Register("typed", mismatched)
	registry.Register("loose", anyShape)

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "move", Handlers: []string{"typed", "loose"}}
	require.NoError(t, d.Dispatch(context.Background(), action, offered, []any{"left", 2.5}))
	require.Empty(t, mismatched.lists)
	require.Equal(t, [][]any{{"left", 2.5}}, anyShape.lists)
}

func TestDispatchMissingRegistrationSkips(t *testing.T) {
	registry := NewRegistry()
	h := &recordingHandler{name: "present"}
	registry.Register("present", h)

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "stop", Handlers: []string{"ghost", "present"}}
	require.NoError(t, d.Dispatch(context.Background(), action, nil, nil))
	require.Equal(t, 1, h.invokes)
}

func TestDispatchHandlerErrorPropagates(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("device on fire")
	registry.Register("stopper", &recordingHandler{name: "stopper", err: boom})

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "stop", Handlers: []string{"stopper"}}
	err := d.Dispatch(context.Background(), action, nil, nil)
	require.ErrorIs(t, err, boom)
}

func TestDispatchFuncAdapters(t *testing.T) {
	registry := NewRegistry()

	var nullaryCalls, unaryCalls int
	registry.Register("lights", NullaryFunc("lights", func(context.Context) error {
		nullaryCalls++
		return nil
	}))
	registry.Register("volume", UnaryFunc("volume", func(_ context.Context, value any) error {
		unaryCalls++
		require.Equal(t, []any{1.0, 2.0}, value)
		return nil
	}))

	d := New(registry, nil)

	require.NoError(t, d.Dispatch(context.Background(),
		vocab.ActionSpec{Trigger: "lights", Handlers: []string{"lights"}}, nil, nil))
	require.Equal(t, 1, nullaryCalls)

	shape := Shape{{Tag: coerce.TagFloat64, Collection: true}}
	require.NoError(t, d.Dispatch(context.Background(),
		vocab.ActionSpec{Trigger: "volume", Handlers: []string{"volume"}}, shape, []any{[]any{1.0, 2.0}}))
	require.Equal(t, 1, unaryCalls)
}

func TestDispatchArityVariantMismatch(t *testing.T) {
	registry := NewRegistry()
	// Nullary-only handler offered one argument: resolution miss, no panic.
	registry.Register("lights", NullaryFunc("lights", func(context.Context) error { return nil }))

	d := New(registry, nil)
	action := vocab.ActionSpec{Trigger: "lights", Handlers: []string{"lights"}}
	shape := Shape{{Tag: coerce.TagString}}
	require.NoError(t, d.Dispatch(context.Background(), action, shape, []any{"on"}))
}

func TestRegistryLookupCopies(t *testing.T) {
	registry := NewRegistry()
	registry.Register("a", &recordingHandler{name: "a"})
	registry.Register("a", &recordingHandler{name: "a2"})

	first := registry.Lookup("a")
	require.Len(t, first, 2)
	first[0] = nil
	require.NotNil(t, registry.Lookup("a")[0])

	require.True(t, registry.Has("a"))
	require.False(t, registry.Has("b"))
	require.Equal(t, []string{"a"}, registry.Names())
	require.Nil(t, registry.Lookup("b"))
}
