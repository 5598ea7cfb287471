package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds runtime configuration for the sectorgen CLI.
// Values are populated from .sectorgen.yaml, SECTORGEN_* env vars, and CLI flags.
type Settings struct {
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"` // auto, text or json
	DatabasePath string `mapstructure:"db_path"`
	TablesPath   string `mapstructure:"tables_path"`
	OutputDir    string `mapstructure:"output_dir"`
	ExportName   string `mapstructure:"export_name"` // strftime pattern
	Stage        string `mapstructure:"stage"`
	Profile      string `mapstructure:"profile"`
	Size         string `mapstructure:"size"`
	Density      string `mapstructure:"density"`
	Distribution string `mapstructure:"distribution"`
}

// LoadSettings reads settings from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func LoadSettings() (Settings, error) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "auto")
	viper.SetDefault("db_path", "sectors.db")
	viper.SetDefault("tables_path", "")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("export_name", "sector-%Y%m%d-%H%M%S.json")
	viper.SetDefault("stage", "full")
	viper.SetDefault("profile", "high_adventure")
	viper.SetDefault("size", "standard")
	viper.SetDefault("density", "standard")
	viper.SetDefault("distribution", "clusters")

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	switch s.LogFormat {
	case "auto", "text", "json":
	default:
		return Settings{}, fmt.Errorf("log_format %q: want auto, text or json", s.LogFormat)
	}
	return s, nil
}
