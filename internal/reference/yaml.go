package reference

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// YAMLSource reads tables from a YAML file, or from the embedded defaults
// when Path is empty.
type YAMLSource struct {
	Path string
}

// Load implements Source.
func (s YAMLSource) Load(_ context.Context) (*Tables, error) {
	data := defaultTables
	if s.Path != "" {
		b, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read reference tables: %w", err)
		}
		data = b
	}
	return ParseYAML(data)
}

// ParseYAML decodes and validates a YAML table set.
func ParseYAML(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse reference tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference tables: %w", err)
	}
	return &t, nil
}

// Default returns the embedded table set.
func Default() *Tables {
	t, err := ParseYAML(defaultTables)
	if err != nil {
		panic(err)
	}
	return t
}
