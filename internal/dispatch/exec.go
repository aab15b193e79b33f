package dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ExecHandler invokes a configured external command with the bound arguments
// appended to its argv. It serves all three call shapes; multi-argument
// dispatch is restricted to the shapes declared in the vocabulary file.
type ExecHandler struct {
	name    string
	argv    []string
	shapes  []Shape
	timeout time.Duration
}

// NewExecHandler builds an exec handler from a parsed command definition.
func NewExecHandler(name string, argv []string, shapes []Shape, timeout time.Duration) *ExecHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExecHandler{name: name, argv: argv, shapes: shapes, timeout: timeout}
}

func (h *ExecHandler) Name() string { return h.name }

// Shapes enumerates declared multi-argument call forms; nil accepts any.
func (h *ExecHandler) Shapes() []Shape { return h.shapes }

// Invoke runs the command with no extra arguments.
func (h *ExecHandler) Invoke(ctx context.Context) error {
	return h.run(ctx, nil)
}

// InvokeValue runs the command with one bound value appended.
func (h *ExecHandler) InvokeValue(ctx context.Context, value any) error {
	extra, err := formatValue(value)
	if err != nil {
		return fmt.Errorf("handler %q: %w", h.name, err)
	}
	return h.run(ctx, extra)
}

// InvokePositional runs the command with all positional values appended in
// order. Collection slots contribute one argv token per element.
func (h *ExecHandler) InvokePositional(ctx context.Context, _ Shape, args []any) error {
	var extra []string
	for _, arg := range args {
		tokens, err := formatValue(arg)
		if err != nil {
			return fmt.Errorf("handler %q: %w", h.name, err)
		}
		extra = append(extra, tokens...)
	}
	return h.run(ctx, extra)
}

func (h *ExecHandler) run(ctx context.Context, extra []string) error {
	if len(h.argv) == 0 {
		return fmt.Errorf("handler %q: command argv is empty", h.name)
	}

	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	argv := append(append([]string(nil), h.argv...), extra...)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}

// formatValue renders a coerced value as argv tokens.
func formatValue(value any) ([]string, error) {
	switch v := value.(type) {
	case []any:
		var tokens []string
		for _, element := range v {
			sub, err := formatValue(element)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, sub...)
		}
		return tokens, nil
	case string:
		return []string{v}, nil
	case bool:
		return []string{strconv.FormatBool(v)}, nil
	case int:
		return []string{strconv.FormatInt(int64(v), 10)}, nil
	case int8:
		return []string{strconv.FormatInt(int64(v), 10)}, nil
	case int16:
		return []string{strconv.FormatInt(int64(v), 10)}, nil
	case int32:
		return []string{strconv.FormatInt(int64(v), 10)}, nil
	case int64:
		return []string{strconv.FormatInt(v, 10)}, nil
	case uint:
		return []string{strconv.FormatUint(uint64(v), 10)}, nil
	case uint8:
		return []string{strconv.FormatUint(uint64(v), 10)}, nil
	case uint16:
		return []string{strconv.FormatUint(uint64(v), 10)}, nil
	case uint32:
		return []string{strconv.FormatUint(uint64(v), 10)}, nil
	case uint64:
		return []string{strconv.FormatUint(v, 10)}, nil
	case float32:
		return []string{strconv.FormatFloat(float64(v), 'f', -1, 32)}, nil
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case decimal.Decimal:
		return []string{v.String()}, nil
	case time.Time:
		return []string{v.Format(time.RFC3339)}, nil
	default:
		return nil, fmt.Errorf("unsupported argument value %T", value)
	}
}
