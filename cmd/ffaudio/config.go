package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "FFAUDIO_CONFIG"

// Config represents the ffaudio configuration file
// (~/.config/ffaudio/config.yaml).
type Config struct {
	ExportDir   string `yaml:"export_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogFile     string `yaml:"log_file"`
	ChunkSize   *int64 `yaml:"chunk_size"`
	KeepPayload *bool  `yaml:"keep_payload"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

// configPath resolves the config file: the flag, then $FFAUDIO_CONFIG, then
// the user config directory.
func configPath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(envConfig)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ffaudio", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig applies config file defaults to flag variables when the
// corresponding flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.ExportDir != "" && !c.IsSet("export-dir") {
		exportDir = cfg.ExportDir
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.LogFile != "" && !c.IsSet("log-file") {
		logFile = cfg.LogFile
	}
	if cfg.ChunkSize != nil && *cfg.ChunkSize > 0 && !c.IsSet("chunk-size") {
		chunkSize = *cfg.ChunkSize
	}
	if cfg.KeepPayload != nil && !c.IsSet("keep-payload") {
		keepPayload = *cfg.KeepPayload
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
