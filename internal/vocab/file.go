package vocab

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voco-sh/voco/internal/coerce"
)

// CommandSpec is one configured exec-command handler definition. Params lists
// the accepted call shapes as type-tag strings; an omitted list means the
// command accepts any argument shape.
type CommandSpec struct {
	Name   string
	Cmd    string
	Params [][]string
}

type fileDoc struct {
	Actions   []fileAction   `yaml:"actions"`
	Arguments []fileArgument `yaml:"arguments"`
	Commands  []fileCommand  `yaml:"commands"`
}

type fileAction struct {
	Trigger    string   `yaml:"trigger"`
	Precedence []string `yaml:"precedence"`
	Handlers   []string `yaml:"handlers"`
	KeyCode    string   `yaml:"key_code"`
}

type fileArgument struct {
	Key        string   `yaml:"key"`
	Type       string   `yaml:"type"`
	Collection bool     `yaml:"collection"`
	Defaults   []string `yaml:"defaults"`
}

type fileCommand struct {
	Name   string     `yaml:"name"`
	Cmd    string     `yaml:"cmd"`
	Params [][]string `yaml:"params"`
}

// LoadFile reads a vocabulary definition file and builds the vocabulary plus
// any exec-command handler definitions it declares.
func LoadFile(path string) (*Vocabulary, []CommandSpec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read vocabulary %q: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes vocabulary YAML content. Unknown fields are rejected so
// misspelled keys surface at load instead of silently dropping actions.
func Parse(content []byte) (*Vocabulary, []CommandSpec, error) {
	var doc fileDoc
	decoder := yaml.NewDecoder(strings.NewReader(string(content)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	actions := make([]ActionSpec, 0, len(doc.Actions))
	for i, record := range doc.Actions {
		trigger := strings.TrimSpace(record.Trigger)
		if trigger == "" {
			return nil, nil, fmt.Errorf("action %d: trigger must not be empty", i)
		}
		for _, handlerRef := range record.Handlers {
			if strings.TrimSpace(handlerRef) == "" {
				return nil, nil, fmt.Errorf("action %q: handler reference must not be empty", trigger)
			}
		}
		actions = append(actions, ActionSpec{
			Trigger:    trigger,
			Precedence: record.Precedence,
			Handlers:   record.Handlers,
			KeyCode:    strings.TrimSpace(record.KeyCode),
		})
	}

	arguments := make([]ArgumentSpec, 0, len(doc.Arguments))
	for i, record := range doc.Arguments {
		key := strings.TrimSpace(record.Key)
		if key == "" {
			return nil, nil, fmt.Errorf("argument %d: key must not be empty", i)
		}
		tag, err := coerce.ParseTag(record.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %q: %w", key, err)
		}
		arguments = append(arguments, ArgumentSpec{
			Key:        key,
			Type:       tag,
			Collection: record.Collection,
			Defaults:   record.Defaults,
		})
	}

	commands := make([]CommandSpec, 0, len(doc.Commands))
	for i, record := range doc.Commands {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			return nil, nil, fmt.Errorf("command %d: name must not be empty", i)
		}
		if strings.TrimSpace(record.Cmd) == "" {
			return nil, nil, fmt.Errorf("command %q: cmd must not be empty", name)
		}
		commands = append(commands, CommandSpec{
			Name:   name,
			Cmd:    record.Cmd,
			Params: record.Params,
		})
	}

	vocabulary, err := New(actions, arguments)
	if err != nil {
		return nil, nil, err
	}
	return vocabulary, commands, nil
}
