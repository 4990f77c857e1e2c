package event

import (
	"fmt"
	"strings"
)

// Definition is a user-declared schema, typically read from the config file.
type Definition struct {
	Name   string   `mapstructure:"name"`
	Inputs []Param  `mapstructure:"inputs"`
	Retain []string `mapstructure:"retain"`
}

// Registry maps event names to schemas.
type Registry struct {
	schemas map[string]*Schema
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// BuiltinRegistry returns a registry holding LiquidationCall, NewTransmission and Transfer.
func BuiltinRegistry() (*Registry, error) {
	parsed, err := SiloEventsABI()
	if err != nil {
		return nil, fmt.Errorf("parse events abi: %w", err)
	}

	retained := map[string][]string{
		"LiquidationCall": nil,
		"NewTransmission": {"answer"},
		"Transfer":        nil,
	}

	reg := NewRegistry()
	for _, name := range []string{"LiquidationCall", "NewTransmission", "Transfer"} {
		ev, ok := parsed.Events[name]
		if !ok {
			return nil, fmt.Errorf("event %s missing from abi", name)
		}
		schema, err := FromABIEvent(ev, retained[name])
		if err != nil {
			return nil, err
		}
		if err := reg.Register(schema); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a schema. Names are unique case-insensitively.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	key := strings.ToLower(s.Name)
	if _, ok := r.schemas[key]; ok {
		return fmt.Errorf("event %s already registered", s.Name)
	}
	r.schemas[key] = s
	r.order = append(r.order, key)
	return nil
}

// Define validates and registers config-declared schemas.
func (r *Registry) Define(defs []Definition) error {
	for _, def := range defs {
		schema, err := New(def.Name, def.Inputs, def.Retain)
		if err != nil {
			return fmt.Errorf("define schema: %w", err)
		}
		if err := r.Register(schema); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Lookup(name string) (*Schema, bool) {
	s, ok := r.schemas[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Schemas returns schemas in registration order.
func (r *Registry) Schemas() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.schemas[key])
	}
	return out
}
