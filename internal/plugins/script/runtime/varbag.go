package runtime

import (
	"fmt"
	"maps"
	"regexp"
	"sync"
)

var varReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// VarBag holds the variables of one virtual user.
// String values are the common case; PutObject stores anything else.
type VarBag struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewVarBag creates an empty variable bag
func NewVarBag() *VarBag {
	return &VarBag{values: make(map[string]any)}
}

// Get returns the value of key formatted as a string, or "" when absent
func (b *VarBag) Get(key string) string {
	v, ok := b.GetObject(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Put stores a string value
func (b *VarBag) Put(key, value string) {
	b.PutObject(key, value)
}

// GetObject returns the raw value stored under key
func (b *VarBag) GetObject(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

// PutObject stores an arbitrary value
func (b *VarBag) PutObject(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.values == nil {
		b.values = make(map[string]any)
	}
	b.values[key] = value
}

// Remove deletes key from the bag
func (b *VarBag) Remove(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
}

// Len returns the number of variables
func (b *VarBag) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

// Entries returns a copy of the bag taken at call time
func (b *VarBag) Entries() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.values)
}

// Expand replaces ${name} references with variable values. Unknown names are left as written.
func (b *VarBag) Expand(s string) string {
	return varReference.ReplaceAllStringFunc(s, func(ref string) string {
		name := varReference.FindStringSubmatch(ref)[1]
		if _, ok := b.GetObject(name); !ok {
			return ref
		}
		return b.Get(name)
	})
}
