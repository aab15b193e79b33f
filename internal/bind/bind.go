// Package bind resolves one phrase-recognition event into the typed, ordered
// argument list its action's handlers expect.
package bind

import (
	"github.com/voco-sh/voco/internal/coerce"
	"github.com/voco-sh/voco/internal/dispatch"
	"github.com/voco-sh/voco/internal/phrase"
	"github.com/voco-sh/voco/internal/vocab"
)

// Bound pairs a recognized meaning with its spec and coerced value. Value is
// a scalar for single-value arguments and an ordered []any for collections.
type Bound struct {
	Spec    vocab.ArgumentSpec
	Meaning phrase.Meaning
	Value   any
}

// Result is the complete outcome of binding one phrase event. All of it is
// rebuilt from scratch per event and discarded once dispatch completes.
type Result struct {
	Trigger    string
	Resolved   bool
	Action     vocab.ActionSpec
	Args       map[string]Bound
	Positional []any
	Shape      dispatch.Shape
}

// Binder resolves phrase events against a vocabulary and coercion registry.
// Both collaborators are read-only; the binder holds no per-event state.
type Binder struct {
	vocabulary *vocab.Vocabulary
	types      *coerce.Registry
	primaryKey string
}

// New constructs a binder. primaryKey is the semantic key whose first value
// selects the action for an event.
func New(vocabulary *vocab.Vocabulary, types *coerce.Registry, primaryKey string) *Binder {
	return &Binder{vocabulary: vocabulary, types: types, primaryKey: primaryKey}
}

// Bind scans the event's meanings once, in order. The first primary meaning
// carrying any values fixes the trigger, even when that value is the empty
// string; later primary meanings never override it. Every other meaning with
// a declared argument spec is coerced into the argument map, duplicates
// last-wins. Meanings with no matching spec are ignored. Coercion failures
// abort the whole event.
func (b *Binder) Bind(event phrase.Event) (Result, error) {
	result := Result{Args: make(map[string]Bound)}

	primarySeen := false
	for _, meaning := range event.Meanings {
		if meaning.Key == b.primaryKey {
			if !primarySeen && len(meaning.Values) > 0 {
				result.Trigger = meaning.Values[0]
				primarySeen = true
			}
			continue
		}

		spec, ok := b.vocabulary.Argument(meaning.Key)
		if !ok || len(meaning.Values) == 0 {
			continue
		}

		value, err := b.coerceMeaning(spec, meaning.Values)
		if err != nil {
			return Result{}, err
		}
		result.Args[meaning.Key] = Bound{Spec: spec, Meaning: meaning, Value: value}
	}

	if result.Trigger == "" {
		return result, nil
	}

	action, ok := b.vocabulary.Action(result.Trigger)
	if !ok {
		return result, nil
	}
	result.Resolved = true
	result.Action = action

	if err := b.applyDefaults(&result); err != nil {
		return Result{}, err
	}

	b.buildPositional(&result)
	return result, nil
}

// coerceMeaning converts recognized values per the spec's collection flag:
// collections keep every value in recognizer order, scalars keep values[0].
func (b *Binder) coerceMeaning(spec vocab.ArgumentSpec, values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}

	if spec.Collection {
		coerced := make([]any, 0, len(values))
		for _, raw := range values {
			value, err := b.types.Coerce(spec.Type, raw)
			if err != nil {
				return nil, err
			}
			coerced = append(coerced, value)
		}
		return coerced, nil
	}

	return b.types.Coerce(spec.Type, values[0])
}

// applyDefaults seeds declared default values for precedence arguments the
// recognizer did not supply. Recognized meanings always win over defaults.
func (b *Binder) applyDefaults(result *Result) error {
	for _, key := range result.Action.Precedence {
		if _, present := result.Args[key]; present {
			continue
		}
		spec, ok := b.vocabulary.Argument(key)
		if !ok || len(spec.Defaults) == 0 {
			continue
		}
		value, err := b.coerceMeaning(spec, spec.Defaults)
		if err != nil {
			return err
		}
		result.Args[key] = Bound{Spec: spec, Value: value}
	}
	return nil
}

// buildPositional fills Positional and Shape. Zero- and one-argument results
// take the map contents directly; with two or more arguments the action's
// precedence list orders the slots, skipping keys the map does not hold.
func (b *Binder) buildPositional(result *Result) {
	switch len(result.Args) {
	case 0:
		return
	case 1:
		for _, bound := range result.Args {
			result.Positional = []any{bound.Value}
			result.Shape = dispatch.Shape{kindOf(bound.Spec)}
		}
		return
	}

	for _, key := range result.Action.Precedence {
		bound, ok := result.Args[key]
		if !ok {
			continue
		}
		result.Positional = append(result.Positional, bound.Value)
		result.Shape = append(result.Shape, kindOf(bound.Spec))
	}
}

func kindOf(spec vocab.ArgumentSpec) dispatch.Kind {
	return dispatch.Kind{Tag: spec.Type, Collection: spec.Collection}
}
