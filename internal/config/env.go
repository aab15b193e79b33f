package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are the VOCO_* environment variables layered over file config.
type envOverrides struct {
	EngineSocket        *string `envconfig:"ENGINE_SOCKET"`
	EngineDialTimeoutMS *int    `envconfig:"ENGINE_DIAL_TIMEOUT_MS"`
	EngineAutoStart     *bool   `envconfig:"ENGINE_AUTO_START"`
	VocabularyPath      *string `envconfig:"VOCABULARY_PATH"`
	PrimaryKey          *string `envconfig:"PRIMARY_KEY"`
	ReportUnresolved    *bool   `envconfig:"REPORT_UNRESOLVED"`
}

// ApplyEnv overlays VOCO_* environment overrides onto cfg.
func ApplyEnv(cfg Config) (Config, error) {
	var overrides envOverrides
	if err := envconfig.Process("voco", &overrides); err != nil {
		return Config{}, fmt.Errorf("read environment overrides: %w", err)
	}

	if overrides.EngineSocket != nil {
		cfg.Engine.Socket = *overrides.EngineSocket
	}
	if overrides.EngineDialTimeoutMS != nil {
		cfg.Engine.DialTimeoutMS = *overrides.EngineDialTimeoutMS
	}
	if overrides.EngineAutoStart != nil {
		cfg.Engine.AutoStart = *overrides.EngineAutoStart
	}
	if overrides.VocabularyPath != nil {
		cfg.Vocabulary.Path = *overrides.VocabularyPath
	}
	if overrides.PrimaryKey != nil {
		cfg.Vocabulary.PrimaryKey = *overrides.PrimaryKey
	}
	if overrides.ReportUnresolved != nil {
		cfg.Dispatch.ReportUnresolved = *overrides.ReportUnresolved
	}

	return cfg, nil
}
