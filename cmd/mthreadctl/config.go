package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/baxromumarov/mthread/internal/logging"
	"github.com/baxromumarov/mthread/internal/stress"
)

// mthreadctl config.toml key mapping to stress and logging settings.
type fileConfig struct {
	Mode       string `toml:"mode"`
	Workers    int    `toml:"workers"`
	Cycles     int    `toml:"cycles"`
	NamePrefix string `toml:"name_prefix"`
	QueueSize  int    `toml:"queue_size"`
	MaxThreads int    `toml:"max_threads"`

	Log struct {
		Level     string `toml:"level"`
		Format    string `toml:"format"`
		Timestamp bool   `toml:"timestamp"`
		NoColor   bool   `toml:"no_color"`
	} `toml:"log"`
}

type appConfig struct {
	Stress     stress.Config
	Log        logging.Config
	MaxThreads int
}

func defaultAppConfig() appConfig {
	return appConfig{
		Stress: stress.DefaultConfig(),
		Log:    logging.DefaultConfig(),
	}
}

func loadConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load mthreadctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return appConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if meta.IsDefined("mode") {
		cfg.Stress.Mode = stress.Mode(strings.ToLower(strings.TrimSpace(raw.Mode)))
	}
	if meta.IsDefined("workers") {
		cfg.Stress.Workers = raw.Workers
	}
	if meta.IsDefined("cycles") {
		cfg.Stress.Cycles = raw.Cycles
	}
	if meta.IsDefined("name_prefix") {
		cfg.Stress.NamePrefix = strings.TrimSpace(raw.NamePrefix)
	}
	if meta.IsDefined("queue_size") {
		cfg.Stress.QueueSize = raw.QueueSize
	}
	if meta.IsDefined("max_threads") {
		if raw.MaxThreads < 0 {
			return appConfig{}, fmt.Errorf("max_threads must be non-negative, got %d", raw.MaxThreads)
		}
		cfg.MaxThreads = raw.MaxThreads
	}

	if meta.IsDefined("log", "level") {
		lvl, ok := logging.ParseLevel(raw.Log.Level)
		if !ok {
			return appConfig{}, fmt.Errorf("parse log.level: unknown level %q", raw.Log.Level)
		}
		cfg.Log.Level = lvl
	}
	if meta.IsDefined("log", "format") {
		f, ok := logging.ParseFormat(raw.Log.Format)
		if !ok {
			return appConfig{}, fmt.Errorf("parse log.format: unknown format %q", raw.Log.Format)
		}
		cfg.Log.Format = f
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if err := cfg.Stress.Validate(); err != nil {
		return appConfig{}, fmt.Errorf("invalid mthreadctl config: %w", err)
	}
	return cfg, nil
}
