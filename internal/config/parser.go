package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type jsoncConfig struct {
	Engine     *jsoncEngine     `json:"engine"`
	Vocabulary *jsoncVocabulary `json:"vocabulary"`
	Dispatch   *jsoncDispatch   `json:"dispatch"`
}

type jsoncEngine struct {
	Socket        *string `json:"socket"`
	DialTimeoutMS *int    `json:"dial_timeout_ms"`
	AutoStart     *bool   `json:"auto_start"`
}

type jsoncVocabulary struct {
	Path       *string `json:"path"`
	PrimaryKey *string `json:"primary_key"`
}

type jsoncDispatch struct {
	ReportUnresolved *bool `json:"report_unresolved"`
	ExecTimeoutMS    *int  `json:"exec_timeout_ms"`
}

// Parse reads JSONC configuration content over a base config. Fields absent
// from the file keep their base values.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	normalized, err := stripJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var parsed jsoncConfig
	if err := decoder.Decode(&parsed); err != nil {
		return Config{}, nil, fmt.Errorf("decode config: %w", err)
	}
	if decoder.More() {
		return Config{}, nil, fmt.Errorf("decode config: multiple JSON values")
	}

	cfg := overlay(base, parsed)
	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// overlay applies every present file field onto the base configuration.
func overlay(base Config, parsed jsoncConfig) Config {
	cfg := base

	if parsed.Engine != nil {
		if parsed.Engine.Socket != nil {
			cfg.Engine.Socket = *parsed.Engine.Socket
		}
		if parsed.Engine.DialTimeoutMS != nil {
			cfg.Engine.DialTimeoutMS = *parsed.Engine.DialTimeoutMS
		}
		if parsed.Engine.AutoStart != nil {
			cfg.Engine.AutoStart = *parsed.Engine.AutoStart
		}
	}

	if parsed.Vocabulary != nil {
		if parsed.Vocabulary.Path != nil {
			cfg.Vocabulary.Path = *parsed.Vocabulary.Path
		}
		if parsed.Vocabulary.PrimaryKey != nil {
			cfg.Vocabulary.PrimaryKey = *parsed.Vocabulary.PrimaryKey
		}
	}

	if parsed.Dispatch != nil {
		if parsed.Dispatch.ReportUnresolved != nil {
			cfg.Dispatch.ReportUnresolved = *parsed.Dispatch.ReportUnresolved
		}
		if parsed.Dispatch.ExecTimeoutMS != nil {
			cfg.Dispatch.ExecTimeoutMS = *parsed.Dispatch.ExecTimeoutMS
		}
	}

	return cfg
}

// stripJSONC removes // and /* */ comments plus trailing commas so the
// result parses as plain JSON. String contents are preserved untouched.
func stripJSONC(content string) ([]byte, error) {
	var (
		out      bytes.Buffer
		inString bool
		escaped  bool
	)

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inString {
			out.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch {
		case r == '"':
			inString = true
			out.WriteRune(r)
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				out.WriteRune('\n')
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			end := -1
			for j := i + 2; j+1 < len(runes); j++ {
				if runes[j] == '*' && runes[j+1] == '/' {
					end = j + 1
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unterminated block comment at offset %d", i)
			}
			i = end
		case r == ',':
			if next := nextMeaningful(runes, i+1); next == ']' || next == '}' {
				continue
			}
			out.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}

	if inString {
		return nil, fmt.Errorf("unterminated string literal")
	}
	return out.Bytes(), nil
}

// nextMeaningful returns the next rune that is not whitespace or a comment.
func nextMeaningful(runes []rune, from int) rune {
	for i := from; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			continue
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i++
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
		default:
			return r
		}
	}
	return 0
}
