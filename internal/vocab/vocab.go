// Package vocab holds the immutable action vocabulary built once at startup:
// declared actions, their argument ordering, and per-argument type metadata.
package vocab

import (
	"errors"
	"sort"

	"github.com/voco-sh/voco/internal/coerce"
)

// ErrEmptyVocabulary rejects a vocabulary with zero declared actions; a
// listener with nothing to fire on must not be activated.
var ErrEmptyVocabulary = errors.New("vocabulary declares no actions")

// ArgumentSpec declares one secondary argument key and its coercion target.
// Collection means all recognized values for the key aggregate into an
// ordered sequence; otherwise only the first value is taken.
type ArgumentSpec struct {
	Key        string
	Type       coerce.Tag
	Collection bool
	Defaults   []string
}

// ActionSpec declares one trigger keyword and how its dispatch behaves.
// Precedence orders positional arguments for multi-argument dispatch.
// KeyCode is carried for host keyboard tooling and never read by the core.
type ActionSpec struct {
	Trigger    string
	Precedence []string
	Handlers   []string
	KeyCode    string
}

// Vocabulary is the read-only action/argument lookup built by New.
type Vocabulary struct {
	actions   map[string]ActionSpec
	arguments map[string]ArgumentSpec
}

// New builds a vocabulary from declared records. Duplicate triggers and
// argument keys follow last-registration-wins, matching load order.
func New(actions []ActionSpec, arguments []ArgumentSpec) (*Vocabulary, error) {
	if len(actions) == 0 {
		return nil, ErrEmptyVocabulary
	}

	v := &Vocabulary{
		actions:   make(map[string]ActionSpec, len(actions)),
		arguments: make(map[string]ArgumentSpec, len(arguments)),
	}
	for _, action := range actions {
		v.actions[action.Trigger] = action
	}
	for _, argument := range arguments {
		v.arguments[argument.Key] = argument
	}
	return v, nil
}

// Action looks up the spec registered for a trigger keyword.
func (v *Vocabulary) Action(trigger string) (ActionSpec, bool) {
	spec, ok := v.actions[trigger]
	return spec, ok
}

// Argument looks up the spec registered for a secondary argument key.
func (v *Vocabulary) Argument(key string) (ArgumentSpec, bool) {
	spec, ok := v.arguments[key]
	return spec, ok
}

// Actions returns all declared actions sorted by trigger.
func (v *Vocabulary) Actions() []ActionSpec {
	out := make([]ActionSpec, 0, len(v.actions))
	for _, spec := range v.actions {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trigger < out[j].Trigger })
	return out
}

// Arguments returns all declared argument specs sorted by key.
func (v *Vocabulary) Arguments() []ArgumentSpec {
	out := make([]ArgumentSpec, 0, len(v.arguments))
	for _, spec := range v.arguments {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
