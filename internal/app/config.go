package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Cycles is the number of update cycles Run drives the graph through.
	Cycles int
	// AdmissionLimit bounds concurrent runs of a single task unless the task
	// declares its own limit.
	AdmissionLimit int64
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Cycles < 0 {
		return nil, fmt.Errorf("cycles must not be negative, got %d", cfg.Cycles)
	}
	if cfg.Cycles == 0 {
		cfg.Cycles = 1
	}
	if cfg.AdmissionLimit < 0 {
		return nil, fmt.Errorf("admission limit must not be negative, got %d", cfg.AdmissionLimit)
	}
	if cfg.AdmissionLimit == 0 {
		cfg.AdmissionLimit = 1
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
