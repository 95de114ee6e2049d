package modelgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// FileConfig is the generator configuration loaded from sqlmodel.yml (or
// sqlmodel.toml).
type FileConfig struct {
	// Package is the Go package name of the generated file. Defaults to the
	// package declared by the parsed sources.
	Package string `yaml:"package" toml:"package"`

	// Output is the generated file name, relative to the source directory.
	Output string `yaml:"output" toml:"output"`

	// Models lists glob patterns over struct names selecting the record
	// types to generate builders for. When empty, the models named by the
	// schemas are selected.
	Models []string `yaml:"models" toml:"models"`

	// Schemas declares the schema types. Model order is table creation
	// order.
	Schemas []SchemaConfig `yaml:"schemas" toml:"schemas"`
}

// SchemaConfig declares one schema type and its member models.
type SchemaConfig struct {
	Name   string   `yaml:"name" toml:"name"`
	Models []string `yaml:"models" toml:"models"`
}

const defaultOutput = "sqlmodel_gen.go"

// LoadConfig reads a configuration file. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	return &cfg, nil
}

func (c *FileConfig) validate() error {
	if len(c.Schemas) == 0 {
		return fmt.Errorf("no schemas defined")
	}
	seen := make(map[string]bool, len(c.Schemas))
	for i, s := range c.Schemas {
		if s.Name == "" {
			return fmt.Errorf("schema %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate schema %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Models) == 0 {
			return fmt.Errorf("schema %q lists no models", s.Name)
		}
	}
	if strings.ContainsAny(c.Output, `/\`) {
		return fmt.Errorf("output %q must be a file name", c.Output)
	}
	return nil
}

// modelFilter returns a predicate selecting record type names.
func (c *FileConfig) modelFilter() (func(string) bool, error) {
	if len(c.Models) == 0 {
		named := make(map[string]bool)
		for _, s := range c.Schemas {
			for _, m := range s.Models {
				named[m] = true
			}
		}
		return func(name string) bool { return named[name] }, nil
	}

	globs := make([]glob.Glob, 0, len(c.Models))
	for _, pattern := range c.Models {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("model pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return func(name string) bool {
		for _, g := range globs {
			if g.Match(name) {
				return true
			}
		}
		return false
	}, nil
}
