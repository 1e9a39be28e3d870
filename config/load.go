package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/model"
)

// Load reads, defaults and validates the configuration file at path
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a configuration from r. Keys not known to Config are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, &model.ConfigurationError{Key: "yaml", Reason: err.Error()}
	}
	cfg.applyDefaults()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseBytes is Parse over an in-memory document
func ParseBytes(data []byte) (*Config, error) {
	return Parse(bytes.NewReader(data))
}

// ToYAML converts the configuration to YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
