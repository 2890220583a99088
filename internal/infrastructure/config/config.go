package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "sdbridge/internal/shared/config"
)

type Config struct {
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Telegram    sharedConfig.TelegramConfig    `mapstructure:"telegram"`
	ServiceDesk sharedConfig.ServiceDeskConfig `mapstructure:"servicedesk"`
	Sync        sharedConfig.SyncConfig        `mapstructure:"sync"`
	Session     sharedConfig.SessionConfig     `mapstructure:"session"`
	Cleanup     sharedConfig.CleanupConfig     `mapstructure:"cleanup"`
	Reauth      sharedConfig.ReauthConfig      `mapstructure:"reauth"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("SDBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, env vars and defaults still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Database defaults
	viper.SetDefault("database.path", "./data/sdbridge.sqlite3")
	viper.SetDefault("database.busy_timeout_ms", 5000)
	viper.SetDefault("database.max_open_conns", 1)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Telegram defaults
	viper.SetDefault("telegram.timeout_seconds", 15)

	// ServiceDesk defaults
	viper.SetDefault("servicedesk.api_prefix", "/api/v1")
	viper.SetDefault("servicedesk.timeout_seconds", 15)

	// Sync defaults
	viper.SetDefault("sync.watch_interval_seconds", 300)
	viper.SetDefault("sync.scope_interval_seconds", 300)
	viper.SetDefault("sync.page_size", 25)
	viper.SetDefault("sync.max_pages", 5)

	// Session defaults
	viper.SetDefault("session.ttl_minutes", 60)

	// Cleanup defaults
	viper.SetDefault("cleanup.interval_seconds", 300)
	viper.SetDefault("cleanup.retention_days", 30)
	viper.SetDefault("cleanup.weekday", 6)
	viper.SetDefault("cleanup.hour_start", 1)
	viper.SetDefault("cleanup.hour_end", 5)
	viper.SetDefault("cleanup.vacuum", true)

	// Reauth defaults
	viper.SetDefault("reauth.enabled", true)
	viper.SetDefault("reauth.at", "02:00")
	viper.SetDefault("reauth.on_startup", true)
}
