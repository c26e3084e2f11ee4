package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/lazycal/internal/calendar"
)

type Config struct {
	WeekStart     string `json:"week_start" yaml:"week_start" toml:"week_start"`
	InitialMonth  string `json:"initial_month" yaml:"initial_month" toml:"initial_month"`
	DefaultFilter string `json:"default_filter" yaml:"default_filter" toml:"default_filter"`
	WebEnabled    bool   `json:"web_enabled" yaml:"web_enabled" toml:"web_enabled"`
	WebPort       int    `json:"web_port" yaml:"web_port" toml:"web_port"`
	LogPath       string `json:"log_path" yaml:"log_path" toml:"log_path"`
	LogLevel      string `json:"log_level" yaml:"log_level" toml:"log_level"`
	ExportPath    string `json:"export_path" yaml:"export_path" toml:"export_path"`
}

func Default() Config {
	return Config{
		WeekStart:     "sunday",
		DefaultFilter: "all",
		WebPort:       8080,
		LogLevel:      "info",
		ExportPath:    "lazycal.ics",
	}
}

// Normalize fills zero values with defaults and folds unknown enum values
// back to their default. An unparseable initial_month is dropped.
func (c *Config) Normalize() {
	defaults := Default()

	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart != "monday" && c.WeekStart != "sunday" {
		c.WeekStart = defaults.WeekStart
	}

	c.DefaultFilter = strings.ToLower(strings.TrimSpace(c.DefaultFilter))
	switch c.DefaultFilter {
	case "all", "past", "upcoming":
	default:
		c.DefaultFilter = defaults.DefaultFilter
	}

	if c.WebPort <= 0 {
		c.WebPort = defaults.WebPort
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaults.LogLevel
	}
	if strings.TrimSpace(c.ExportPath) == "" {
		c.ExportPath = defaults.ExportPath
	}
	c.InitialMonth = strings.TrimSpace(c.InitialMonth)
	if c.InitialMonth != "" {
		if _, err := time.Parse(calendar.MonthLayout, c.InitialMonth); err != nil {
			c.InitialMonth = ""
		}
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazycal", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := decode(path, data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.Normalize()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	cfg.Normalize()
	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func decode(path string, data []byte, cfg *Config) error {
	switch format(path) {
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return json.Unmarshal(data, cfg)
	}
}

func encode(path string, cfg Config) ([]byte, error) {
	switch format(path) {
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
