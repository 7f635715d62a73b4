package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// TopologyPath is a .hcl file or a directory of them.
	TopologyPath string

	LogFormat string
	LogLevel  string
	// MaxSteps overrides the scheduler's per-pass budget when positive.
	MaxSteps int
}

// NewConfig validates a config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TopologyPath == "" {
		return nil, errors.New("TopologyPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
