package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/warrantylens/warrantylens/internal/core/store"
)

// EnvPrefix is the environment variable prefix, e.g. WARRANTYLENS_BATCH_WORKERS.
const EnvPrefix = "WARRANTYLENS"

// SetDefaults installs the default configuration values on the viper
// instance. The batch defaults mirror the lookup service's tolerances:
// 96 in-flight lookups, 2 retries, 3s per attempt, 100ms between attempts,
// a checkpoint every 100 completions.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://newsupport.lenovo.com.cn/api/drive")
	v.SetDefault("api.timeout", "3s")
	v.SetDefault("api.headers", map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"Accept":          "application/json",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Referer":         "https://newsupport.lenovo.com.cn/",
	})

	v.SetDefault("batch.workers", 96)
	v.SetDefault("batch.max_retries", 2)
	v.SetDefault("batch.retry_delay", "100ms")
	v.SetDefault("batch.checkpoint_interval", 100)

	v.SetDefault("store.path", store.DefaultPath)
	v.SetDefault("export.dir", "exports")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load unmarshals the viper state into a typed Config. Duration fields are
// parsed from strings by the decode hook.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the orchestrator cannot run with.
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Batch.MaxRetries < 0 {
		return fmt.Errorf("batch.max_retries must not be negative, got %d", c.Batch.MaxRetries)
	}
	if c.Batch.CheckpointInterval < 1 {
		return fmt.Errorf("batch.checkpoint_interval must be at least 1, got %d", c.Batch.CheckpointInterval)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Batch.RetryDelay < 0 {
		return fmt.Errorf("batch.retry_delay must not be negative, got %s", c.Batch.RetryDelay)
	}
	return nil
}
