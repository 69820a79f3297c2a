package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the beamdec configuration file
// (~/.config/beamdec/config.yaml). Numeric fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	// Search defaults
	BeamSize *int64 `yaml:"beam_size"`
	MaxSteps *int64 `yaml:"max_steps"`
	MinSteps *int64 `yaml:"min_steps"`
	Mode     string `yaml:"mode"`

	// Demo model
	StopStep *int64 `yaml:"stop_step"`
	Seed     *int64 `yaml:"seed"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "beamdec", "config.yaml")
}

// applySearchConfig applies config file defaults to the search and demo model
// flags when the corresponding CLI flag was not explicitly set.
func applySearchConfig(c *cli.Command, cfg Config) {
	if cfg.BeamSize != nil && !c.IsSet("beam-size") {
		beamSize = *cfg.BeamSize
	}
	if cfg.MaxSteps != nil && !c.IsSet("max-steps") {
		maxSteps = *cfg.MaxSteps
	}
	if cfg.MinSteps != nil && !c.IsSet("min-steps") {
		minSteps = *cfg.MinSteps
	}
	if cfg.Mode != "" && !c.IsSet("mode") {
		scoreMode = cfg.Mode
	}
	if cfg.StopStep != nil && !c.IsSet("stop-step") {
		stopStep = *cfg.StopStep
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	applyLoggingConfig(c, cfg)
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applySearchConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
