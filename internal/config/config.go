package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"casadns/internal/casadns"
	"casadns/internal/discover"
	"casadns/internal/logger"
	"casadns/internal/validator"

	"github.com/spf13/viper"
)

// AppName is used for config search paths and log naming
var AppName = "casadns"

// DefaultInterval between scheduled update cycles
const DefaultInterval = 15 * time.Minute

// Config represents the daemon configuration
type Config struct {
	CasaDNS   CasaDNSConfig   `mapstructure:"casadns"`
	Discovery discover.Config `mapstructure:"discovery"`
	API       APIConfig       `mapstructure:"api"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       logger.Config   `mapstructure:"log"`
}

// CasaDNSConfig represents the update endpoint configuration
type CasaDNSConfig struct {
	Domains  string        `mapstructure:"domains" validate:"required,domains"`
	Token    string        `mapstructure:"token" validate:"required"`
	Interval time.Duration `mapstructure:"interval"`
	Endpoint string        `mapstructure:"endpoint" validate:"omitempty,url"`
}

// APIConfig represents the embedded HTTP API configuration
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// StorageConfig represents the update history store configuration
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads the daemon configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/" + AppName)
		v.AddConfigPath("/etc/" + AppName)
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Domains are stored in canonical form
	config.CasaDNS.Domains = casadns.NormalizeDomains(config.CasaDNS.Domains)

	setDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values if not specified
func setDefaults(config *Config) {
	if config.CasaDNS.Interval == 0 {
		config.CasaDNS.Interval = DefaultInterval
	}

	if config.CasaDNS.Endpoint == "" {
		config.CasaDNS.Endpoint = casadns.DefaultEndpoint
	}

	config.Discovery.SetDefaults()

	if config.API.Address == "" {
		config.API.Address = ":8645"
	}

	if config.Storage.Path == "" {
		config.Storage.Path = AppName + ".db"
	}

	config.Log.SetDefaults()
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := validator.New().Struct(&config.CasaDNS); err != nil {
		return err
	}

	if config.CasaDNS.Interval < time.Minute {
		return fmt.Errorf("casadns.interval must be at least 1m, got %s", config.CasaDNS.Interval)
	}

	if config.Discovery.Timeout <= 0 {
		return fmt.Errorf("discovery.timeout must be positive")
	}

	if err := config.Log.Validate(); err != nil {
		return err
	}

	return nil
}
