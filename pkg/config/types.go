package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// Duration is a time.Duration written as "30s" or "1m30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ClassRef is a command class given by name or number.
type ClassRef wire.ClassID

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ClassRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: command class must be a name or number", value.Line)
	}
	id, err := wire.ParseClassID(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = ClassRef(id)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c ClassRef) MarshalYAML() (any, error) {
	return wire.ClassID(c).String(), nil
}
