// Package config loads layered scan configuration: built-in defaults,
// an optional config file, environment variables, then CLI flags, in that
// precedence order.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the orchestrator's runtime configuration.
type Config struct {
	DataDir     string        `mapstructure:"data_dir"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ExtraDirs   []string      `mapstructure:"extra_dirs"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// New builds a viper instance carrying pluginary's defaults, an optional
// config file, and PLUGINARY_-prefixed environment variable overrides.
// Callers bind cobra flags on top before calling Load.
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("pluginary")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "")
	v.SetDefault("concurrency", 0) // 0 means orchestrator picks min(NumCPU, 8)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("extra_dirs", []string{})
	v.SetDefault("metrics_addr", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
		// Any error reading the file, including a missing file, is
		// discarded; defaults and environment overrides still apply.
		_ = v.ReadInConfig()
	}
	return v
}

// Load materializes a Config from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
