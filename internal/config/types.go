// Package config resolves, parses, validates, and defaults voco configuration.
package config

// Config is the fully materialized runtime configuration used by voco.
type Config struct {
	Engine     EngineConfig
	Vocabulary VocabularyConfig
	Dispatch   DispatchConfig
}

// EngineConfig controls the recognizer engine connection.
type EngineConfig struct {
	Socket        string
	DialTimeoutMS int
	AutoStart     bool
}

// VocabularyConfig locates the vocabulary file and names the primary key.
type VocabularyConfig struct {
	Path       string
	PrimaryKey string
}

// DispatchConfig controls dispatch-cycle reporting and exec handler limits.
type DispatchConfig struct {
	ReportUnresolved bool
	ExecTimeoutMS    int
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Line    int
	Message string
}
