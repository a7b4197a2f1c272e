package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds repository-local defaults, overridable by CLI flags.
type Config struct {
	Author        string `yaml:"author,omitempty"`
	DefaultBranch string `yaml:"default_branch,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	LogJSON       bool   `yaml:"log_json,omitempty"`
	GCEvery       int    `yaml:"gc_every,omitempty"`
}

// Defaults returns the built-in fallback values, used whenever no
// config file is present or a field is left unset in one.
func Defaults() Config {
	return Config{
		Author:        "agit",
		DefaultBranch: "main",
		LogLevel:      "warn",
		GCEvery:       0,
	}
}

// Path returns the conventional config file location under dataDir's
// .agit directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, ".agit", "config.yaml")
}

// Load reads and parses the YAML config at path, returning Defaults()
// overlaid with the file's values, or Defaults() alone if the file does
// not exist.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating its parent directory if
// necessary.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
