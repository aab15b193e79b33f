package config

// Default returns the canonical runtime configuration used when no file is
// present. Vocabulary.Path is resolved relative to the config directory at
// load time when left relative.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Socket:        "/run/voco/engine.sock",
			DialTimeoutMS: 3000,
			AutoStart:     true,
		},
		Vocabulary: VocabularyConfig{
			Path:       "vocabulary.yaml",
			PrimaryKey: "action",
		},
		Dispatch: DispatchConfig{
			ReportUnresolved: true,
			ExecTimeoutMS:    5000,
		},
	}
}
