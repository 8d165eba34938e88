package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rutaguard/rutaguard/internal/types"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ValidatorConfig, error) {
	v := viper.New()

	v.SetDefault("validator.catalog_path", "")
	v.SetDefault("validator.database_url", "")
	v.SetDefault("validator.workers", 0)
	v.SetDefault("validator.max_records", types.MaxRecords)
	v.SetDefault("validator.output", "text")
	v.SetDefault("validator.output_path", "")
	v.SetDefault("validator.log_level", "info")

	// Bind environment variables with RG_ prefix
	v.SetEnvPrefix("RG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ValidatorConfig{
		CatalogPath: v.GetString("validator.catalog_path"),
		DatabaseURL: v.GetString("validator.database_url"),
		Workers:     v.GetInt("validator.workers"),
		MaxRecords:  v.GetInt("validator.max_records"),
		Output:      v.GetString("validator.output"),
		OutputPath:  v.GetString("validator.output_path"),
		LogLevel:    v.GetString("validator.log_level"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
