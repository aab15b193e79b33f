// Package fsm models the per-phrase dispatch cycle as a pure transition table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateBinding     State = "binding"
	StateDispatching State = "dispatching"
	StateNoAction    State = "no_action"
)

const (
	EventPhrase     Event = "phrase"
	EventResolved   Event = "resolved"
	EventMiss       Event = "miss"
	EventBound      Event = "bound"
	EventDispatched Event = "dispatched"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

// Transition applies one event to the current cycle state. EventFail lands in
// no_action from anywhere; the next phrase starts a fresh cycle from idle.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateNoAction, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventPhrase:
			return StateScanning, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateScanning:
		switch event {
		case EventResolved:
			return StateBinding, nil
		case EventMiss:
			return StateNoAction, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateBinding:
		switch event {
		case EventBound:
			return StateDispatching, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDispatching:
		switch event {
		case EventDispatched:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateNoAction:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
