// Package config holds the per-library override surface for the projection:
// naming prefixes, ignored namespaces and allocation-place overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"api-projector/internal/decl"
)

// Allocation place override values.
const (
	PlaceStack = "stack"
	PlaceHeap  = "heap"
)

// Config is the root of a YAML projection configuration file.
type Config struct {
	// Library is the target library name, used as the root path segment.
	Library string `yaml:"library"`

	// PrefixesToRemove lists literal prefixes stripped from identifiers.
	PrefixesToRemove []string `yaml:"prefixes_to_remove,omitempty"`

	// FilteredNamespaces lists namespace segments dropped from target paths.
	FilteredNamespaces []string `yaml:"filtered_namespaces,omitempty"`

	// AllocationPlaces overrides the by-value-return allocation policy per
	// fully qualified source type name. Values: "stack" or "heap".
	AllocationPlaces map[string]string `yaml:"allocation_places,omitempty"`

	// FlagsTemplates names the class templates standing for bit-flag sets.
	FlagsTemplates []string `yaml:"flags_templates,omitempty"`
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var c Config

	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if c.Library == "" {
		return nil, fmt.Errorf("config is missing the library name")
	}

	for name, place := range c.AllocationPlaces {
		if place != PlaceStack && place != PlaceHeap {
			return nil, fmt.Errorf("invalid allocation place %q for type %q", place, name)
		}
	}

	return &c, nil
}

// Marshal serializes a Config to YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes a Config to the given path.
func WriteFile(c *Config, path string) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// AllocationOverride returns the overridden allocation place for the fully
// qualified type name, if one is configured.
func (c *Config) AllocationOverride(typeName string) (decl.AllocationPlace, bool) {
	place, ok := c.AllocationPlaces[typeName]
	if !ok {
		return decl.PlaceNotApplicable, false
	}

	if place == PlaceHeap {
		return decl.PlaceHeap, true
	}

	return decl.PlaceStack, true
}
