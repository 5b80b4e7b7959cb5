package config

import (
	"github.com/spf13/viper"

	"github.com/loykin/jiggler/internal/logger"
)

// FileConfig represents the top-level TOML structure. All fields are
// optional; command-line flags override anything set here.
//
// Example:
//
//	interval = "30s"
//	amplitude = 1
//	pattern = "square"
//	duration = "2h"
//	state_dir = "/home/me/.jiggler"
//	history_dsn = "sqlite:///home/me/.jiggler/history.db"
//	metrics_listen = "127.0.0.1:9310"
//
//	[log]
//	max_size_mb = 10
//	max_backups = 3
//	max_age_days = 7
//	compress = false
type FileConfig struct {
	Interval      string     `toml:"interval" mapstructure:"interval"`
	Amplitude     *int       `toml:"amplitude" mapstructure:"amplitude"`
	Pattern       string     `toml:"pattern" mapstructure:"pattern"`
	Duration      string     `toml:"duration" mapstructure:"duration"`
	StateDir      string     `toml:"state_dir" mapstructure:"state_dir"`
	HistoryDSN    string     `toml:"history_dsn" mapstructure:"history_dsn"`
	MetricsListen string     `toml:"metrics_listen" mapstructure:"metrics_listen"`
	Log           *LogConfig `toml:"log" mapstructure:"log"`
}

type LogConfig struct {
	MaxSizeMB  int  `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `toml:"compress" mapstructure:"compress"`
}

// FileConfigFor converts the log section to the logger package's config.
// The path is filled in by the state directory later.
func (l *LogConfig) FileConfigFor() logger.FileConfig {
	if l == nil {
		return logger.FileConfig{}
	}
	return logger.FileConfig{
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// Load reads a TOML config file. An empty path yields a zero config.
func Load(path string) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fc, err
	}
	if err := v.Unmarshal(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}
