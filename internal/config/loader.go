package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	RuntimeURL      string `json:"runtime_url" yaml:"runtime_url" toml:"runtime_url"`
	Model           string `json:"model" yaml:"model" toml:"model"`
	OutputSize      int    `json:"output_size" yaml:"output_size" toml:"output_size"`
	CheckpointsDir  string `json:"checkpoints_dir" yaml:"checkpoints_dir" toml:"checkpoints_dir"`
	MaxUploadMB     int    `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
	RequestTimeoutS int64  `json:"request_timeout_s" yaml:"request_timeout_s" toml:"request_timeout_s"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
