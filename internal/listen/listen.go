// Package listen drives the per-phrase dispatch cycle: it consumes recognizer
// events from a source, binds each event's action and arguments, and hands
// the result to the handler dispatcher. Per-event failures never stop the
// listener; each phrase starts a fresh cycle.
package listen

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/voco-sh/voco/internal/bind"
	"github.com/voco-sh/voco/internal/dispatch"
	"github.com/voco-sh/voco/internal/fsm"
	"github.com/voco-sh/voco/internal/phrase"
)

// StartBehavior selects whether activation begins listening immediately.
type StartBehavior int

const (
	ManualStart StartBehavior = iota
	AutoStart
)

// ErrTornDown rejects starting a listener whose resources were released.
var ErrTornDown = errors.New("listener already torn down")

// Source is the recognizer event stream the listener consumes.
type Source interface {
	Events() <-chan phrase.Event
	Err() error
	Close() error
}

// Options tunes non-structural listener behavior.
type Options struct {
	// ReportUnresolved logs a warning when a phrase names no known action.
	ReportUnresolved bool
}

// Listener owns one recognizer subscription and its dispatch cycle.
type Listener struct {
	logger     *slog.Logger
	source     Source
	binder     *bind.Binder
	dispatcher *dispatch.Dispatcher
	opts       Options

	mu       sync.Mutex
	started  bool
	tornDown bool
	stopCh   chan struct{}
	runDone  chan struct{}
}

// Activate wires a listener over its collaborators and, under AutoStart,
// begins consuming events immediately.
func Activate(
	logger *slog.Logger,
	source Source,
	binder *bind.Binder,
	dispatcher *dispatch.Dispatcher,
	behavior StartBehavior,
	opts Options,
) (*Listener, error) {
	if source == nil {
		return nil, errors.New("listener requires an event source")
	}
	if binder == nil {
		return nil, errors.New("listener requires a binder")
	}
	if dispatcher == nil {
		return nil, errors.New("listener requires a dispatcher")
	}

	l := &Listener{
		logger:     logger,
		source:     source,
		binder:     binder,
		dispatcher: dispatcher,
		opts:       opts,
	}
	if behavior == AutoStart {
		if err := l.Start(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Start begins consuming events. Starting an already-running listener is a
// no-op.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tornDown {
		return ErrTornDown
	}
	if l.started {
		return nil
	}

	l.stopCh = make(chan struct{})
	l.runDone = make(chan struct{})
	l.started = true
	go l.run(l.stopCh, l.runDone)
	return nil
}

// Stop pauses event consumption. Stopping an already-stopped listener is a
// no-op. The event source stays open; Start resumes it.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.started = false
	stopCh, runDone := l.stopCh, l.runDone
	l.mu.Unlock()

	close(stopCh)
	<-runDone
}

// Running reports whether the listener is currently consuming events.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// Teardown stops consumption and releases the event source. Safe to call
// when never started and safe to call repeatedly.
func (l *Listener) Teardown() error {
	l.Stop()

	l.mu.Lock()
	if l.tornDown {
		l.mu.Unlock()
		return nil
	}
	l.tornDown = true
	l.mu.Unlock()

	return l.source.Close()
}

// run consumes events until stopped or the source ends.
func (l *Listener) run(stopCh <-chan struct{}, runDone chan<- struct{}) {
	defer close(runDone)

	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-l.source.Events():
			if !ok {
				if err := l.source.Err(); err != nil {
					l.logWarn("engine event stream failed", "error", err.Error())
				}
				l.mu.Lock()
				l.started = false
				l.mu.Unlock()
				return
			}
			// Per-event errors are already logged; the listener keeps going.
			_ = l.HandleEvent(context.Background(), event)
		}
	}
}

// HandleEvent runs one complete dispatch cycle for a phrase event and
// returns its outcome. Used by the run loop and by one-shot simulation.
func (l *Listener) HandleEvent(ctx context.Context, event phrase.Event) error {
	state, _ := fsm.Transition(fsm.StateIdle, fsm.EventPhrase)

	result, err := l.binder.Bind(event)
	if err != nil {
		state, _ = fsm.Transition(state, fsm.EventFail)
		l.logWarn("phrase dispatch aborted",
			"state", string(state),
			"text", phrase.CleanText(event.Text),
			"error", err.Error(),
		)
		return err
	}

	if !result.Resolved {
		state, _ = fsm.Transition(state, fsm.EventMiss)
		if l.opts.ReportUnresolved {
			l.logWarn("no action resolved",
				"state", string(state),
				"text", phrase.CleanText(event.Text),
				"trigger", result.Trigger,
			)
		}
		return nil
	}

	state, _ = fsm.Transition(state, fsm.EventResolved)
	state, _ = fsm.Transition(state, fsm.EventBound)

	if err := l.dispatcher.Dispatch(ctx, result.Action, result.Shape, result.Positional); err != nil {
		state, _ = fsm.Transition(state, fsm.EventFail)
		l.logWarn("handler invocation failed",
			"state", string(state),
			"action", result.Action.Trigger,
			"error", err.Error(),
		)
		return err
	}

	state, _ = fsm.Transition(state, fsm.EventDispatched)
	l.logDebug("action dispatched",
		"state", string(state),
		"action", result.Action.Trigger,
		"args", len(result.Positional),
		"confidence", event.Confidence,
	)
	return nil
}

func (l *Listener) logWarn(message string, fields ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Warn(message, fields...)
}

func (l *Listener) logDebug(message string, fields ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(message, fields...)
}
