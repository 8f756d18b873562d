package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env  string `mapstructure:"env"`  // current application environment (local, dev, prod etc)
	API  API    `mapstructure:"api"`  // backend API section
	Sync Sync   `mapstructure:"sync"` // background sync section

	DataDir string `mapstructure:"data_dir"` // directory for the local session database and exports
}

// API contains backend connection parameters.
type API struct {
	BaseURL string        `mapstructure:"-"`       // backend base URL loaded from environment
	Timeout time.Duration `mapstructure:"timeout"` // per-request HTTP timeout
}

// Sync configures the background progress/token sync job.
type Sync struct {
	Interval     time.Duration `mapstructure:"interval"`      // how often progress is refreshed
	RenewBefore  time.Duration `mapstructure:"renew_before"`  // renew the access token this long before expiry
	ExportSheet  string        `mapstructure:"export_sheet"`  // sheet name used in progress report exports
	ExportPrefix string        `mapstructure:"export_prefix"` // file name prefix for progress report exports
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("data_dir", "data")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("sync.interval", "5m")
	v.SetDefault("sync.renew_before", "1m")
	v.SetDefault("sync.export_sheet", "Progress")
	v.SetDefault("sync.export_prefix", "linguahub-progress")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("api_base_url", "LINGUAHUB_API_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.API.BaseURL = v.GetString("api_base_url")
	if cfg.API.BaseURL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
