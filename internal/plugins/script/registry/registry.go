package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// IDPrefix tags every identifier handed out by a Registry
const IDPrefix = "GoScript"

var (
	// ErrNotFound is returned when no script is registered under an identifier
	ErrNotFound = errors.New("script not found")
	// ErrEmbeddedOnly is returned when a Go-defined script is resolved outside embedded execution
	ErrEmbeddedOnly = errors.New("scripts defined in Go code can only run in embedded execution")
)

// Entry is a registered script waiting to be injected into a property store
type Entry struct {
	ID     string
	Script runtime.Script
}

// Registry maps generated identifiers to Go-defined scripts.
// Registration and lookup are safe for concurrent use, and lookups never wait on registrations.
type Registry struct {
	counter atomic.Uint64
	size    atomic.Int64
	scripts sync.Map
}

// New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// Shared is the process-wide registry used by the plan builder helpers
var Shared = New()

// Register stores script under a fresh identifier and returns it
func (r *Registry) Register(script runtime.Script) string {
	id := IDPrefix + strconv.FormatUint(r.counter.Add(1), 10)
	r.scripts.Store(id, script)
	r.size.Add(1)
	return id
}

// Lookup returns the script registered under id
func (r *Registry) Lookup(id string) (runtime.Script, error) {
	v, ok := r.scripts.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: no script registered under %q", ErrNotFound, id)
	}
	return v.(runtime.Script), nil
}

// Unregister drops id. Unknown identifiers are ignored.
func (r *Registry) Unregister(id string) {
	if _, loaded := r.scripts.LoadAndDelete(id); loaded {
		r.size.Add(-1)
	}
}

// Len returns the number of live registrations
func (r *Registry) Len() int {
	return int(r.size.Load())
}

// IsGenerated reports whether id has the shape of a registry identifier
func IsGenerated(id string) bool {
	n, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || n == "" {
		return false
	}
	_, err := strconv.ParseUint(n, 10, 64)
	return err == nil
}

// Missing builds the error for an identifier that could not be resolved in the given mode.
// Outside embedded execution a generated identifier can never resolve, and the error says so
// instead of reporting a plain miss.
func Missing(id string, mode runtime.Mode) error {
	if mode != runtime.ModeEmbedded && IsGenerated(id) {
		return fmt.Errorf("%w: script %q was defined in Go code and is not available in %s execution (GUI and remote engines cannot run it)",
			ErrEmbeddedOnly, id, mode)
	}
	return fmt.Errorf("%w: no script registered under %q", ErrNotFound, id)
}
