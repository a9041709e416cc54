package factory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// ModuleConfig selects a module implementation by type and carries its raw
// configuration, as found under "profile", "catalog", "outputs" or
// "metrics.sinks" in the configuration file.
type ModuleConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// With returns a copy of the config with key set to value unless the raw
// configuration already defines it.
func (c ModuleConfig) With(key string, value any) ModuleConfig {
	conf := make(map[string]any, len(c.Conf)+1)
	for k, v := range c.Conf {
		conf[k] = v
	}
	if _, ok := conf[key]; !ok {
		conf[key] = value
	}
	return ModuleConfig{Type: c.Type, Conf: conf}
}

// Factory constructs an implementation of T using the provided raw config.
type Factory[T any] func(map[string]any) (T, error)

// Registry stores factories keyed by module type.
type Registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty registry. kind names the module family in
// error messages, e.g. "profile source".
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, factories: make(map[string]Factory[T])}
}

// Register adds a factory for the given type name.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if f == nil {
		return fmt.Errorf("%s factory nil for %s", r.kind, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%s factory already registered for %s", r.kind, name)
	}
	r.factories[name] = f
	return nil
}

// Names returns the registered type names in lexical order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create instantiates a module based on its configuration.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s type %q (known: %s)", r.kind, cfg.Type, strings.Join(r.Names(), ", "))
	}
	conf := cfg.Conf
	if conf == nil {
		conf = map[string]any{}
	}
	return f(conf)
}

// Decode fills out the provided struct using json tags. Strings are
// converted to numbers and booleans where the target field requires it, so
// values coming from environment overrides decode cleanly.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
