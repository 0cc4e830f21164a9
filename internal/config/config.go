// Package config defines configuration for the replay driver. Config is
// loaded from a YAML file (default: configs/config.yaml) with fields
// overridable via REPLAY_* environment variables, following the
// viper-based layout in 0xtitan6-polymarket-mm/internal/config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for cmd/replay.
type Config struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ArchiveConfig points at the root of the archive layout described in
// spec.md §6 (data/ws_*.txt.gz chunks, data/PPP-PPP_*.json.gz snapshots).
type ArchiveConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// ReplayConfig controls which product and window a replay run covers. A
// run drives exactly one Book for one product: the typed feed events
// internal/book decodes carry no product_id (spec.md §6 lists only
// sequence/time plus variant fields), so one hourly chunk file can only
// ever be replayed into one product's Book per run — see DESIGN.md.
type ReplayConfig struct {
	Product       string        `mapstructure:"product"`
	StartTime     time.Time     `mapstructure:"start_time"`
	CheckSequence bool          `mapstructure:"check_sequence"`
	ChunkWindow   time.Duration `mapstructure:"chunk_window"`
}

// LoggingConfig controls the zerolog sink at the CLI boundary.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with REPLAY_* env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("REPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("archive.data_dir", "data")
	v.SetDefault("replay.chunk_window", time.Hour)
	v.SetDefault("replay.check_sequence", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the fields a replay run cannot proceed without.
func (c *Config) Validate() error {
	if c.Archive.DataDir == "" {
		return fmt.Errorf("archive.data_dir is required")
	}
	if c.Replay.Product == "" {
		return fmt.Errorf("replay.product is required")
	}
	if c.Replay.StartTime.IsZero() {
		return fmt.Errorf("replay.start_time is required")
	}
	if c.Replay.ChunkWindow <= 0 {
		return fmt.Errorf("replay.chunk_window must be > 0")
	}
	return nil
}
