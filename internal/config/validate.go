package config

import "fmt"

// Validate checks cfg for values the runtime cannot operate with. Recoverable
// oddities are returned as warnings; hard errors abort the load.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	if cfg.Engine.Socket == "" {
		return nil, fmt.Errorf("engine.socket must not be empty")
	}
	if cfg.Engine.DialTimeoutMS <= 0 {
		return nil, fmt.Errorf("engine.dial_timeout_ms must be positive, got %d", cfg.Engine.DialTimeoutMS)
	}
	if cfg.Vocabulary.Path == "" {
		return nil, fmt.Errorf("vocabulary.path must not be empty")
	}
	if cfg.Vocabulary.PrimaryKey == "" {
		return nil, fmt.Errorf("vocabulary.primary_key must not be empty")
	}
	if cfg.Dispatch.ExecTimeoutMS <= 0 {
		return nil, fmt.Errorf("dispatch.exec_timeout_ms must be positive, got %d", cfg.Dispatch.ExecTimeoutMS)
	}

	if cfg.Engine.DialTimeoutMS > 60_000 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("engine.dial_timeout_ms is unusually large (%dms)", cfg.Engine.DialTimeoutMS),
		})
	}

	return warnings, nil
}
