// Package props holds the runner's shared property store.
//
// The store is process-wide and visible to every script through the props binding. It is
// only usable after runtime configuration has been loaded into it, which the plan builder
// checks before injecting Go-defined scripts.
package props

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override properties.
// LOADPLAN_PROP_HTTP_TIMEOUT sets http.timeout.
const EnvPrefix = "LOADPLAN_PROP_"

// Defaults are loaded before any properties file
var Defaults = map[string]any{
	"script.language":               "javascript",
	"sampleresult.default.encoding": "UTF-8",
}

// Store is a concurrent key/value property store
type Store struct {
	mu          sync.RWMutex
	values      map[string]any
	initialized bool
}

// New creates an uninitialized store
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// Shared is the property store of this process
var Shared = New()

// Load reads defaults, the optional YAML properties file at path and LOADPLAN_PROP_*
// environment overrides, in increasing precedence, and marks the store initialized.
// Nested YAML keys are flattened with dots.
func (s *Store) Load(path string) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return fmt.Errorf("failed to load default properties: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("error reading properties file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return fmt.Errorf("failed to load property overrides from env: %w", err)
	}

	s.Init(k.All())
	return nil
}

// Init copies values into the store and marks it initialized
func (s *Store) Init(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any, len(values))
	}
	maps.Copy(s.values, values)
	s.initialized = true
}

// Initialized reports whether runtime configuration has been loaded
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Get returns the value for key, or nil
func (s *Store) Get(key string) any {
	v, _ := s.Lookup(key)
	return v
}

// Lookup returns the value for key and whether it was present
func (s *Store) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value for key formatted as a string, or def when absent
func (s *Store) GetString(key, def string) string {
	v, ok := s.Lookup(key)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// Put sets a single property
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[key] = value
}

// PutAll sets every property in values under one lock
func (s *Store) PutAll(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any, len(values))
	}
	maps.Copy(s.values, values)
}

// Delete removes keys
func (s *Store) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
}

// Keys returns the sorted property names
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}
