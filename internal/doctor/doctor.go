// Package doctor runs runtime readiness diagnostics for config, vocabulary, and engine.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/voco-sh/voco/internal/config"
	"github.com/voco-sh/voco/internal/dispatch"
	"github.com/voco-sh/voco/internal/vocab"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/vocabulary checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: message})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime dir available for control socket", "XDG_RUNTIME_DIR is empty"))

	vocabulary, commands, err := vocab.LoadFile(cfg.Config.Vocabulary.Path)
	if err != nil {
		checks = append(checks, Check{
			Name:    "vocabulary",
			Pass:    false,
			Message: fmt.Sprintf("load %s: %v", cfg.Config.Vocabulary.Path, err),
		})
		checks = append(checks, checkEngineSocket(cfg.Config.Engine.Socket))
		return Report{Checks: checks}
	}

	checks = append(checks, Check{
		Name: "vocabulary",
		Pass: true,
		Message: fmt.Sprintf("%d actions, %d arguments, %d commands from %s",
			len(vocabulary.Actions()), len(vocabulary.Arguments()), len(commands), cfg.Config.Vocabulary.Path),
	})

	checks = append(checks, checkHandlerRefs(vocabulary, commands)...)
	checks = append(checks, checkPrecedenceKeys(vocabulary)...)
	checks = append(checks, checkCommandShapes(commands)...)
	checks = append(checks, checkCommandBinaries(commands)...)
	checks = append(checks, checkEngineSocket(cfg.Config.Engine.Socket))

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkHandlerRefs verifies every action's handler refs name a declared command.
func checkHandlerRefs(vocabulary *vocab.Vocabulary, commands []vocab.CommandSpec) []Check {
	declared := map[string]struct{}{}
	for _, command := range commands {
		declared[command.Name] = struct{}{}
	}

	var missing []string
	for _, action := range vocabulary.Actions() {
		for _, ref := range action.Handlers {
			if _, ok := declared[ref]; !ok {
				missing = append(missing, fmt.Sprintf("%s -> %s", action.Trigger, ref))
			}
		}
	}

	if len(missing) > 0 {
		return []Check{{
			Name:    "handlers",
			Pass:    false,
			Message: "unresolvable handler refs: " + strings.Join(missing, ", "),
		}}
	}
	return []Check{{Name: "handlers", Pass: true, Message: "all handler refs resolve to commands"}}
}

// checkPrecedenceKeys verifies every precedence entry names a declared argument.
func checkPrecedenceKeys(vocabulary *vocab.Vocabulary) []Check {
	var missing []string
	for _, action := range vocabulary.Actions() {
		for _, key := range action.Precedence {
			if _, ok := vocabulary.Argument(key); !ok {
				missing = append(missing, fmt.Sprintf("%s -> %s", action.Trigger, key))
			}
		}
	}

	if len(missing) > 0 {
		return []Check{{
			Name:    "precedence",
			Pass:    false,
			Message: "undeclared argument keys: " + strings.Join(missing, ", "),
		}}
	}
	return []Check{{Name: "precedence", Pass: true, Message: "all precedence keys are declared arguments"}}
}

// checkCommandShapes verifies declared parameter lists parse as call shapes.
func checkCommandShapes(commands []vocab.CommandSpec) []Check {
	var bad []string
	for _, command := range commands {
		for _, params := range command.Params {
			if _, err := dispatch.ParseShape(params); err != nil {
				bad = append(bad, fmt.Sprintf("%s: %v", command.Name, err))
			}
		}
	}

	if len(bad) > 0 {
		return []Check{{
			Name:    "shapes",
			Pass:    false,
			Message: "invalid parameter shapes: " + strings.Join(bad, "; "),
		}}
	}
	return []Check{{Name: "shapes", Pass: true, Message: "all command parameter shapes parse"}}
}

// checkCommandBinaries verifies each command's binary is runnable from PATH.
func checkCommandBinaries(commands []vocab.CommandSpec) []Check {
	var missing []string
	for _, command := range commands {
		argv := strings.Fields(command.Cmd)
		if len(argv) == 0 {
			missing = append(missing, command.Name+": empty argv")
			continue
		}
		bin := argv[0]
		if strings.ContainsRune(bin, os.PathSeparator) {
			if _, err := os.Stat(bin); err != nil {
				missing = append(missing, fmt.Sprintf("%s: %s", command.Name, bin))
			}
			continue
		}
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, fmt.Sprintf("%s: %s not in PATH", command.Name, bin))
		}
	}

	if len(missing) > 0 {
		return []Check{{
			Name:    "binaries",
			Pass:    false,
			Message: strings.Join(missing, "; "),
		}}
	}
	return []Check{{Name: "binaries", Pass: true, Message: "all command binaries found"}}
}

// checkEngineSocket reports whether the recognizer socket exists on disk.
func checkEngineSocket(path string) Check {
	if strings.TrimSpace(path) == "" {
		return Check{Name: "engine.socket", Pass: false, Message: "engine socket path is empty"}
	}
	if _, err := os.Stat(path); err != nil {
		return Check{Name: "engine.socket", Pass: false, Message: fmt.Sprintf("no socket at %s", path)}
	}
	return Check{Name: "engine.socket", Pass: true, Message: fmt.Sprintf("socket present at %s", path)}
}
