package bind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voco-sh/voco/internal/coerce"
	"github.com/voco-sh/voco/internal/dispatch"
	"github.com/voco-sh/voco/internal/phrase"
	"github.com/voco-sh/voco/internal/vocab"
)

const primaryKey = "action"

func testBinder(t *testing.T) *Binder {
	t.Helper()

	v, err := vocab.New(
		[]vocab.ActionSpec{
			{Trigger: "move", Precedence: []string{"direction", "distance"}, Handlers: []string{"robot"}},
			{Trigger: "route", Precedence: []string{"direction", "waypoints", "speed"}, Handlers: []string{"robot"}},
			{Trigger: "stop", Handlers: []string{"robot"}},
		},
		[]vocab.ArgumentSpec{
			{Key: "direction", Type: coerce.TagString},
			{Key: "distance", Type: coerce.TagFloat64},
			{Key: "speed", Type: coerce.TagFloat64, Defaults: []string{"1.0"}},
			{Key: "waypoints", Type: coerce.TagFloat64, Collection: true},
		},
	)
	require.NoError(t, err)
	return New(v, coerce.NewRegistry(), primaryKey)
}

func meanings(pairs ...phrase.Meaning) phrase.Event {
	return phrase.Event{Meanings: pairs}
}

func TestBindZeroArgumentAction(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(phrase.Meaning{Key: primaryKey, Values: []string{"stop"}}))
	require.NoError(t, err)
	require.True(t, result.Resolved)
	require.Equal(t, "stop", result.Trigger)
	require.Empty(t, result.Args)
	require.Empty(t, result.Positional)
}

func TestBindPositionalFollowsPrecedence(t *testing.T) {
	b := testBinder(t)

	// distance recognized before direction; precedence still orders them.
	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "distance", Values: []string{"2.5"}},
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
	))
	require.NoError(t, err)
	require.True(t, result.Resolved)
	require.Equal(t, []any{"left", 2.5}, result.Positional)
	require.Equal(t, dispatch.Shape{
		{Tag: coerce.TagString},
		{Tag: coerce.TagFloat64},
	}, result.Shape)
}

func TestBindFirstNonEmptyPrimaryWins(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: nil},
		phrase.Meaning{Key: primaryKey, Values: []string{"stop"}},
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
	))
	require.NoError(t, err)
	require.Equal(t, "stop", result.Trigger)
	require.True(t, result.Resolved)
}

func TestBindEmptyPrimaryValueStopsDispatch(t *testing.T) {
	b := testBinder(t)

	// The first primary meaning carries a value, so it wins even though the
	// value is empty; the later "stop" must not override it.
	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{""}},
		phrase.Meaning{Key: primaryKey, Values: []string{"stop"}},
	))
	require.NoError(t, err)
	require.False(t, result.Resolved)
	require.Empty(t, result.Trigger)
}

func TestBindNoPrimaryKeyIsNoAction(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
	))
	require.NoError(t, err)
	require.False(t, result.Resolved)
	require.Empty(t, result.Trigger)
}

func TestBindUnknownTriggerIsNoAction(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"teleport"}},
	))
	require.NoError(t, err)
	require.Equal(t, "teleport", result.Trigger)
	require.False(t, result.Resolved)
}

func TestBindUnknownSecondaryKeyIgnored(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
		phrase.Meaning{Key: "mood", Values: []string{"cheerful"}},
	))
	require.NoError(t, err)
	require.Len(t, result.Args, 1)
	require.NotContains(t, result.Args, "mood")
}

func TestBindScalarTakesFirstValueOnly(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "distance", Values: []string{"2.5", "9.9", "100"}},
	))
	require.NoError(t, err)
	require.Equal(t, 2.5, result.Args["distance"].Value)
}

func TestBindCollectionPreservesOrder(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"route"}},
		phrase.Meaning{Key: "waypoints", Values: []string{"1.5", "2.5", "3.5"}},
	))
	require.NoError(t, err)
	require.Equal(t, []any{1.5, 2.5, 3.5}, result.Args["waypoints"].Value)
}

func TestBindDuplicateSecondaryKeyLastWins(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
		phrase.Meaning{Key: "direction", Values: []string{"right"}},
	))
	require.NoError(t, err)
	require.Equal(t, "right", result.Args["direction"].Value)
}

func TestBindPrecedenceSkipsAbsentKeys(t *testing.T) {
	b := testBinder(t)

	// route precedence is [direction, waypoints, speed]; direction is absent.
	// speed is seeded from its declared default.
	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"route"}},
		phrase.Meaning{Key: "waypoints", Values: []string{"1.5", "2.5"}},
	))
	require.NoError(t, err)
	require.Len(t, result.Positional, 2)
	require.Equal(t, []any{1.5, 2.5}, result.Positional[0])
	require.Equal(t, 1.0, result.Positional[1])
	require.Equal(t, dispatch.Shape{
		{Tag: coerce.TagFloat64, Collection: true},
		{Tag: coerce.TagFloat64},
	}, result.Shape)
}

func TestBindRecognizedValueOverridesDefault(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"route"}},
		phrase.Meaning{Key: "direction", Values: []string{"north"}},
		phrase.Meaning{Key: "speed", Values: []string{"3.5"}},
	))
	require.NoError(t, err)
	require.Equal(t, 3.5, result.Args["speed"].Value)
	require.Equal(t, []any{"north", 3.5}, result.Positional)
}

func TestBindSingleArgumentUnwrapped(t *testing.T) {
	b := testBinder(t)

	result, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
	))
	require.NoError(t, err)
	require.Equal(t, []any{"left"}, result.Positional)
	require.Equal(t, dispatch.Shape{{Tag: coerce.TagString}}, result.Shape)
}

func TestBindCoercionFailureAbortsEvent(t *testing.T) {
	b := testBinder(t)

	_, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "distance", Values: []string{"fast"}},
	))
	require.Error(t, err)

	var cerr *coerce.Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "fast", cerr.Raw)
}

func TestBindRebuildsStatePerEvent(t *testing.T) {
	b := testBinder(t)

	first, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"move"}},
		phrase.Meaning{Key: "direction", Values: []string{"left"}},
	))
	require.NoError(t, err)
	require.Len(t, first.Args, 1)

	second, err := b.Bind(meanings(
		phrase.Meaning{Key: primaryKey, Values: []string{"stop"}},
	))
	require.NoError(t, err)
	require.Empty(t, second.Args)
}
