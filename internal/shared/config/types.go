package config

import "time"

type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (c *TelegramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ServiceDeskConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIPrefix      string `mapstructure:"api_prefix"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (c *ServiceDeskConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type SyncConfig struct {
	WatchIntervalSeconds int `mapstructure:"watch_interval_seconds"`
	ScopeIntervalSeconds int `mapstructure:"scope_interval_seconds"`
	PageSize             int `mapstructure:"page_size"`
	MaxPages             int `mapstructure:"max_pages"`
}

func (c *SyncConfig) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

func (c *SyncConfig) ScopeInterval() time.Duration {
	return time.Duration(c.ScopeIntervalSeconds) * time.Second
}

type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type CleanupConfig struct {
	IntervalSeconds int  `mapstructure:"interval_seconds"`
	RetentionDays   int  `mapstructure:"retention_days"`
	Weekday         int  `mapstructure:"weekday"` // 0=Monday .. 6=Sunday
	HourStart       int  `mapstructure:"hour_start"`
	HourEnd         int  `mapstructure:"hour_end"`
	Vacuum          bool `mapstructure:"vacuum"`
}

func (c *CleanupConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type ReauthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	At        string `mapstructure:"at"` // wall-clock "HH:MM", local time
	OnStartup bool   `mapstructure:"on_startup"`
}
