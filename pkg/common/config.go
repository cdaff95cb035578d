package common

import (
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every command. Values come from an
// optional YAML file and are overridden by command line flags.
type Config struct {
	Verbose        bool  `yaml:"verbose"`
	Strict         bool  `yaml:"strict"`
	BaseOffset     int64 `yaml:"base_offset"`
	KeepSystemArea bool  `yaml:"keep_system_area"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Strict:         true,
		KeepSystemArea: true,
	}
}

// LoadConfig reads a YAML config file from fs on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, FormatError(ErrFailedToReadConfig, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, FormatError(ErrFailedToParseConfig, err)
	}
	return cfg, nil
}
