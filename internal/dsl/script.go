package dsl

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/binding"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/executors"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/registry"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

var (
	// ErrPrecondition marks plan-construction ordering bugs
	ErrPrecondition = errors.New("precondition failed")
	// ErrStoreNotInitialized is returned when a Go-defined script is materialized before
	// runtime properties are loaded into the shared property store
	ErrStoreNotInitialized = fmt.Errorf("%w: property store is not initialized, load runtime properties before building the plan", ErrPrecondition)
)

// PropertyStore is the part of the shared property store the builder writes to
type PropertyStore interface {
	Initialized() bool
	PutAll(values map[string]any)
	Delete(keys ...string)
}

// DefaultRemap maps declared record fields to the binding names scripts see them under
var DefaultRemap = map[string]string{
	"label":        "Label",
	"sampleResult": "SampleResult",
}

// scriptState is either configured or materialized
type scriptState interface {
	isScriptState()
}

type configured struct {
	pending []registry.Entry
}

type materialized struct {
	element *Element
}

func (configured) isScriptState()   {}
func (materialized) isScriptState() {}

type scriptElement struct {
	mu       sync.Mutex
	kind     ElementKind
	name     string
	language string
	text     string
	state    scriptState
}

func (s *scriptElement) init(kind ElementKind, name, text string, pending []registry.Entry) {
	if name == "" {
		name = kind.DefaultName()
	}
	s.kind = kind
	s.name = name
	s.language = executors.DefaultLanguage
	s.text = text
	s.state = configured{pending: pending}
}

func (s *scriptElement) setLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = language
}

// materialize injects pending entries once and caches the element
func (s *scriptElement) materialize(store PropertyStore) (*Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch st := s.state.(type) {
	case materialized:
		return st.element, nil
	case configured:
		if len(st.pending) > 0 {
			if store == nil || !store.Initialized() {
				return nil, fmt.Errorf("script element %q: %w", s.name, ErrStoreNotInitialized)
			}
			values := make(map[string]any, len(st.pending))
			for _, e := range st.pending {
				values[e.ID] = e.Script
			}
			store.PutAll(values)
		}
		element := &Element{
			Kind:     s.kind,
			Name:     s.name,
			Language: s.language,
			Script:   s.text,
		}
		s.state = materialized{element: element}
		return element, nil
	default:
		return nil, fmt.Errorf("script element %q: unknown state %T", s.name, st)
	}
}

// RawScript is a script element configured from literal text
type RawScript struct {
	scriptElement
}

// NewRawScript creates a script element running text as is
func NewRawScript(kind ElementKind, name, text string) *RawScript {
	r := &RawScript{}
	r.init(kind, name, text, nil)
	return r
}

// WithLanguage sets the script language. It has no effect once the element is materialized.
func (r *RawScript) WithLanguage(language string) *RawScript {
	r.setLanguage(language)
	return r
}

// Name implements Builder
func (r *RawScript) Name() string { return r.name }

// Materialize implements Builder. Raw scripts never write to the store.
func (r *RawScript) Materialize(store PropertyStore) (*Element, error) {
	return r.materialize(store)
}

// CallbackScript is a script element backed by a Go-defined script.
// Its text is binding text that resolves the script through the shared property store,
// so it only runs in embedded execution.
type CallbackScript struct {
	scriptElement
	reg *registry.Registry
	id  string
}

// NewCallbackScript registers script in reg and generates the binding text for shape.
// remap renames declared fields to the binding names of the interpreter.
func NewCallbackScript(reg *registry.Registry, kind ElementKind, name string, shape runtime.Shape, script runtime.Script, remap map[string]string) *CallbackScript {
	id := reg.Register(script)
	text := binding.Generate(id, shape, remap)
	c := &CallbackScript{reg: reg, id: id}
	c.init(kind, name, text, []registry.Entry{{ID: id, Script: script}})
	return c
}

// WithLanguage sets the script language. It has no effect once the element is materialized.
func (c *CallbackScript) WithLanguage(language string) *CallbackScript {
	c.setLanguage(language)
	return c
}

// Name implements Builder
func (c *CallbackScript) Name() string { return c.name }

// ID returns the registry identifier of the script
func (c *CallbackScript) ID() string { return c.id }

// Script returns the generated binding text
func (c *CallbackScript) Script() string { return c.text }

// Materialize implements Builder. The first call copies the registered script into store,
// which must be initialized; later calls return the same element and write nothing.
func (c *CallbackScript) Materialize(store PropertyStore) (*Element, error) {
	return c.materialize(store)
}

// Release removes the script from the registry and from store
func (c *CallbackScript) Release(store PropertyStore) {
	c.reg.Unregister(c.id)
	if store != nil {
		store.Delete(c.id)
	}
}

func newTyped[T runtime.Record](kind ElementKind, name string, fn func(T) error) *CallbackScript {
	shape, err := kind.Shape()
	if err != nil {
		panic(err)
	}
	return NewCallbackScript(registry.Shared, kind, name, shape, runtime.Func[T](fn), maps.Clone(DefaultRemap))
}

// PreProcessor creates a pre-processor running fn through the shared registry
func PreProcessor(name string, fn func(*runtime.PreProcessorVars) error) *CallbackScript {
	return newTyped(KindPreProcessor, name, fn)
}

// PostProcessor creates a post-processor running fn through the shared registry
func PostProcessor(name string, fn func(*runtime.PostProcessorVars) error) *CallbackScript {
	return newTyped(KindPostProcessor, name, fn)
}

// Sampler creates a sampler running fn through the shared registry
func Sampler(name string, fn func(*runtime.SamplerVars) error) *CallbackScript {
	return newTyped(KindSampler, name, fn)
}

// RawPreProcessor creates a pre-processor from script text
func RawPreProcessor(name, text string) *RawScript {
	return NewRawScript(KindPreProcessor, name, text)
}

// RawPostProcessor creates a post-processor from script text
func RawPostProcessor(name, text string) *RawScript {
	return NewRawScript(KindPostProcessor, name, text)
}

// RawSampler creates a sampler from script text
func RawSampler(name, text string) *RawScript {
	return NewRawScript(KindSampler, name, text)
}
