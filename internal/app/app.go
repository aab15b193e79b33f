package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/voco-sh/voco/internal/bind"
	"github.com/voco-sh/voco/internal/cli"
	"github.com/voco-sh/voco/internal/coerce"
	"github.com/voco-sh/voco/internal/config"
	"github.com/voco-sh/voco/internal/dispatch"
	"github.com/voco-sh/voco/internal/doctor"
	"github.com/voco-sh/voco/internal/engine"
	"github.com/voco-sh/voco/internal/ipc"
	"github.com/voco-sh/voco/internal/listen"
	"github.com/voco-sh/voco/internal/logging"
	"github.com/voco-sh/voco/internal/phrase"
	"github.com/voco-sh/voco/internal/version"
	"github.com/voco-sh/voco/internal/vocab"
)

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	r := Runner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voco"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voco"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(parsed.Verbose)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandVocab:
		return r.commandVocab(cfgLoaded.Config)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStart:
		return r.forwardOrFail(ctx, ipc.CommandStart)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, ipc.CommandStop)
	case cli.CommandShutdown:
		return r.forwardOrFail(ctx, ipc.CommandShutdown)
	case cli.CommandSimulate:
		return r.commandSimulate(ctx, cfgLoaded.Config, logger)
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandVocab(cfg config.Config) int {
	vocabulary, commands, err := vocab.LoadFile(cfg.Vocabulary.Path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(r.Stdout, "vocabulary: %s\n", cfg.Vocabulary.Path)
	for _, action := range vocabulary.Actions() {
		fmt.Fprintf(r.Stdout, "action %q precedence=%v handlers=%v",
			action.Trigger, action.Precedence, action.Handlers)
		if action.KeyCode != "" {
			fmt.Fprintf(r.Stdout, " key_code=%s", action.KeyCode)
		}
		fmt.Fprintln(r.Stdout)
	}
	for _, argument := range vocabulary.Arguments() {
		kind := string(argument.Type)
		if argument.Collection {
			kind = "[]" + kind
		}
		fmt.Fprintf(r.Stdout, "argument %q type=%s defaults=%v\n",
			argument.Key, kind, argument.Defaults)
	}
	for _, command := range commands {
		fmt.Fprintf(r.Stdout, "command %q cmd=%q params=%v\n",
			command.Name, command.Cmd, command.Params)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "unknown"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "not running")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running voco listener\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandSimulate runs exactly one dispatch cycle for an event read as JSON
// from stdin. It exercises the same binder and dispatcher the daemon uses.
func (r Runner) commandSimulate(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	listener, err := buildListener(cfg, logger, noEvents{}, listen.ManualStart)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = listener.Teardown() }()

	var event phrase.Event
	decoder := json.NewDecoder(r.Stdin)
	if err := decoder.Decode(&event); err != nil {
		fmt.Fprintf(r.Stderr, "error: decode event from stdin: %v\n", err)
		return 2
	}

	if err := listener.HandleEvent(ctx, event); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(r.Stdout, "dispatched")
	return 0
}

func (r Runner) commandListen(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	controlListener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: another voco listener is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = controlListener.Close()
		_ = os.Remove(socketPath)
	}()

	source, err := engine.Dial(ctx, cfg.Engine.Socket, time.Duration(cfg.Engine.DialTimeoutMS)*time.Millisecond, logger)
	if err != nil {
		if errors.Is(err, engine.ErrEngineUnavailable) {
			fmt.Fprintf(r.Stderr, "error: recognizer engine is not reachable at %s\n", cfg.Engine.Socket)
		} else {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
		}
		return 1
	}

	behavior := listen.ManualStart
	if cfg.Engine.AutoStart {
		behavior = listen.AutoStart
	}

	listener, err := buildListener(cfg, logger, source, behavior)
	if err != nil {
		_ = source.Close()
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = listener.Teardown() }()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	control := controlHandler{listener: listener, shutdown: serverCancel}
	logger.Info("listener ready",
		"engine", cfg.Engine.Socket,
		"control", socketPath,
		"auto_start", cfg.Engine.AutoStart,
	)

	if err := ipc.Serve(serverCtx, controlListener, control); err != nil {
		fmt.Fprintf(r.Stderr, "error: control server failed: %v\n", err)
		return 1
	}

	logger.Info("listener shut down")
	return 0
}

// controlHandler maps daemon control requests onto the running listener.
type controlHandler struct {
	listener *listen.Listener
	shutdown context.CancelFunc
}

func (h controlHandler) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return ipc.Response{OK: true, State: h.state()}
	case ipc.CommandStart:
		if err := h.listener.Start(); err != nil {
			return ipc.Response{OK: false, Error: err.Error()}
		}
		return ipc.Response{OK: true, State: h.state(), Message: "listening"}
	case ipc.CommandStop:
		h.listener.Stop()
		return ipc.Response{OK: true, State: h.state(), Message: "paused"}
	case ipc.CommandShutdown:
		h.shutdown()
		return ipc.Response{OK: true, Message: "shutting down"}
	default:
		return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

func (h controlHandler) state() string {
	if h.listener.Running() {
		return "listening"
	}
	return "paused"
}

// buildListener assembles the full dispatch pipeline from config: vocabulary,
// type registry, exec-command handlers, binder, and dispatcher.
func buildListener(cfg config.Config, logger *slog.Logger, source listen.Source, behavior listen.StartBehavior) (*listen.Listener, error) {
	vocabulary, commands, err := vocab.LoadFile(cfg.Vocabulary.Path)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(commands, time.Duration(cfg.Dispatch.ExecTimeoutMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	binder := bind.New(vocabulary, coerce.NewRegistry(), cfg.Vocabulary.PrimaryKey)
	dispatcher := dispatch.New(registry, logger)

	return listen.Activate(logger, source, binder, dispatcher, behavior, listen.Options{
		ReportUnresolved: cfg.Dispatch.ReportUnresolved,
	})
}

// buildRegistry turns configured command specs into registered exec handlers.
func buildRegistry(commands []vocab.CommandSpec, timeout time.Duration) (*dispatch.Registry, error) {
	registry := dispatch.NewRegistry()
	for _, command := range commands {
		argv := strings.Fields(command.Cmd)
		if len(argv) == 0 {
			return nil, fmt.Errorf("command %q: empty argv", command.Name)
		}

		var shapes []dispatch.Shape
		for _, params := range command.Params {
			shape, err := dispatch.ParseShape(params)
			if err != nil {
				return nil, fmt.Errorf("command %q: %w", command.Name, err)
			}
			shapes = append(shapes, shape)
		}

		registry.Register(command.Name, dispatch.NewExecHandler(command.Name, argv, shapes, timeout))
	}
	return registry, nil
}

// noEvents is the event source for one-shot simulation: no stream, nothing
// to close.
type noEvents struct{}

func (noEvents) Events() <-chan phrase.Event { return nil }
func (noEvents) Err() error                  { return nil }
func (noEvents) Close() error                { return nil }

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.IsDaemonAbsent(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}
