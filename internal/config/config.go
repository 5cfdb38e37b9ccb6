package config

import "time"

// Config is the complete application configuration, loaded from the config
// file, environment variables, and flag overrides.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Store   StoreConfig   `mapstructure:"store"`
	Export  ExportConfig  `mapstructure:"export"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig describes the remote warranty lookup service.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Headers are static identifying headers sent with every lookup.
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// BatchConfig tunes the orchestrator and fetcher.
type BatchConfig struct {
	Workers            int           `mapstructure:"workers"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
	CheckpointInterval int           `mapstructure:"checkpoint_interval"`
}

// StoreConfig locates the durable result document.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ExportConfig controls report generation.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig contains the read-only snapshot server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format selects the encoder: console or json.
	Format string `mapstructure:"format"`
}
