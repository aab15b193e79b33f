package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandListen   Command = "listen"
	CommandSimulate Command = "simulate"
	CommandStatus   Command = "status"
	CommandStart    Command = "start"
	CommandStop     Command = "stop"
	CommandShutdown Command = "shutdown"
	CommandVocab    Command = "vocab"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandListen:   {},
	CommandSimulate: {},
	CommandStatus:   {},
	CommandStart:    {},
	CommandStop:     {},
	CommandShutdown: {},
	CommandVocab:    {},
	CommandDoctor:   {},
	CommandVersion:  {},
	CommandHelp:     {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Verbose    bool
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--verbose":
			parsed.Verbose = true
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--verbose] <command>

Commands:
  listen    Connect to the recognizer engine and dispatch recognized commands
  simulate  Read one recognition event as JSON from stdin and dispatch it
  status    Print the running listener's state
  start     Tell a running listener to start consuming events
  stop      Tell a running listener to stop consuming events
  shutdown  Tell a running listener to exit
  vocab     Load the vocabulary file and print a summary
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voco/config.jsonc)
  --verbose       Log dispatch-cycle traces at debug level
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
