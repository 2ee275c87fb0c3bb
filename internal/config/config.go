package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	Dir        = ".chainbox"
	ConfigFile = "config.yaml"
	DataDir    = "data"
	MarkerFile = "network"
)

type Config struct {
	Version     string `yaml:"version"`
	Image       Image  `yaml:"image"`
	Ports       Ports  `yaml:"ports"`
	FastCatchup bool   `yaml:"fast_catchup"`
}

type Image struct {
	Base string `yaml:"base"`
	Tag  string `yaml:"tag"`
}

type Ports struct {
	Algod int `yaml:"algod"`
	KMD   int `yaml:"kmd"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Version: "1",
		Image: Image{
			Base: "ubuntu:24.04",
			Tag:  "chainbox",
		},
		Ports: Ports{
			Algod: 4001,
			KMD:   4002,
		},
		FastCatchup: true,
	}
}

// Root returns the chainbox home directory under the user's home dir.
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, Dir), nil
}

// Load reads config.yaml from rootDir, falling back to defaults (and
// persisting them) when the file does not exist yet.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(rootDir, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes config.yaml to rootDir, creating the directory if needed.
func Save(rootDir string, cfg *Config) error {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(rootDir, ConfigFile), data, 0o644)
}
