package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes which loaders to intercept and how results are presented
type Config struct {
	// Loader module ids (paths) to intercept up front. More are added as resources
	// announce their loaders.
	Targets []string `yaml:"targets"`

	// Loaders whose name contains any of these are never measured nor reported
	Exclude []string `yaml:"exclude"`

	// Number of groups to show/report, 0 for all
	Top int `yaml:"top"`
}

func DefaultConfig() Config {
	return Config{
		Exclude: []string{DefaultExclude},
		Top:     DefaultGroupCount,
	}
}

// LoadConfig loads configuration from a YAML file. Missing settings get their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(config.Exclude) == 0 {
		config.Exclude = []string{DefaultExclude}
	}
	if config.Top < 0 {
		return Config{}, fmt.Errorf("invalid top %d: must not be negative", config.Top)
	}

	return config, nil
}
