// Package config provides configuration management for the validation CLI.
package config

import (
	"fmt"

	"github.com/rutaguard/rutaguard/internal/types"
)

// ValidatorConfig holds configuration for a validation run.
type ValidatorConfig struct {
	CatalogPath string // YAML catalogue; empty means the embedded default
	DatabaseURL string // catalogue database; empty means catalogue from file
	Workers     int    // 0 lets the engine pick
	MaxRecords  int
	Output      string // text or csv
	OutputPath  string // where csv output goes; empty means stdout
	LogLevel    string
}

// DefaultValidatorConfig returns configuration with default values.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		CatalogPath: "",
		DatabaseURL: "",
		Workers:     0,
		MaxRecords:  types.MaxRecords,
		Output:      "text",
		OutputPath:  "",
		LogLevel:    "info",
	}
}

// validateConfig checks worker count, record limit, and output format.
func validateConfig(cfg *ValidatorConfig) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.MaxRecords <= 0 || cfg.MaxRecords > types.MaxRecords {
		return fmt.Errorf("max_records must be between 1 and %d, got %d", types.MaxRecords, cfg.MaxRecords)
	}
	switch cfg.Output {
	case "text", "csv":
	default:
		return fmt.Errorf("output must be text or csv, got %q", cfg.Output)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", cfg.LogLevel)
	}
	return nil
}
