package dsl

import (
	"errors"
	"fmt"
	"time"
)

// PlanVersion is the plan file format version
const PlanVersion = "v1"

// Plan is a load-test plan under construction
type Plan struct {
	Name       string
	Threads    int
	Iterations int
	Properties map[string]any
	Elements   []Builder
}

// NewPlan creates a plan with one thread running one iteration
func NewPlan(name string) *Plan {
	return &Plan{
		Name:       name,
		Threads:    1,
		Iterations: 1,
	}
}

// WithThreads sets the number of virtual users
func (p *Plan) WithThreads(n int) *Plan {
	p.Threads = n
	return p
}

// WithIterations sets how many times each virtual user runs the elements
func (p *Plan) WithIterations(n int) *Plan {
	p.Iterations = n
	return p
}

// WithProperty adds a property written to the store when the plan is built
func (p *Plan) WithProperty(key string, value any) *Plan {
	if p.Properties == nil {
		p.Properties = make(map[string]any)
	}
	p.Properties[key] = value
	return p
}

// Add appends elements in execution order
func (p *Plan) Add(elements ...Builder) *Plan {
	p.Elements = append(p.Elements, elements...)
	return p
}

// BuiltPlan is a plan whose elements are all materialized
type BuiltPlan struct {
	Version    string         `json:"version" yaml:"version"`
	Name       string         `json:"name" yaml:"name"`
	Threads    int            `json:"threads" yaml:"threads"`
	Iterations int            `json:"iterations" yaml:"iterations"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Elements   []*Element     `json:"elements" yaml:"elements"`
}

// Build materializes every element against store, which must hold the loaded runtime
// properties. Plan properties are written to store first.
func (p *Plan) Build(store PropertyStore) (*BuiltPlan, error) {
	if p.Threads < 1 {
		return nil, fmt.Errorf("plan %q: threads must be at least 1", p.Name)
	}
	if p.Iterations < 1 {
		return nil, fmt.Errorf("plan %q: iterations must be at least 1", p.Name)
	}
	if len(p.Properties) > 0 {
		if store == nil || !store.Initialized() {
			return nil, fmt.Errorf("plan %q: %w", p.Name, ErrStoreNotInitialized)
		}
		store.PutAll(p.Properties)
	}

	built := &BuiltPlan{
		Version:    PlanVersion,
		Name:       p.Name,
		Threads:    p.Threads,
		Iterations: p.Iterations,
		Properties: p.Properties,
		Elements:   make([]*Element, 0, len(p.Elements)),
	}
	for i, b := range p.Elements {
		el, err := b.Materialize(store)
		if err != nil {
			return nil, fmt.Errorf("plan %q: element %d: %w", p.Name, i, err)
		}
		built.Elements = append(built.Elements, el)
	}
	return built, nil
}

// Close releases what the plan's elements hold in the registry and in store.
// The plan must not be run afterwards.
func (p *Plan) Close(store PropertyStore) {
	for _, b := range p.Elements {
		if r, ok := b.(Releaser); ok {
			r.Release(store)
		}
	}
}

// DelayElement pauses the virtual user for a fixed time
type DelayElement struct {
	name     string
	duration time.Duration
}

// Delay creates a constant delay element
func Delay(name string, d time.Duration) *DelayElement {
	if name == "" {
		name = KindDelay.DefaultName()
	}
	return &DelayElement{name: name, duration: d}
}

// Name implements Builder
func (d *DelayElement) Name() string { return d.name }

// Materialize implements Builder
func (d *DelayElement) Materialize(PropertyStore) (*Element, error) {
	if d.duration < 0 {
		return nil, errors.New("delay duration cannot be negative")
	}
	return &Element{Kind: KindDelay, Name: d.name, Duration: d.duration.String()}, nil
}

// LogElement writes a message to the run log. ${name} references are replaced with
// the virtual user's variables when it runs.
type LogElement struct {
	name    string
	message string
}

// Log creates a log element
func Log(name, message string) *LogElement {
	if name == "" {
		name = KindLog.DefaultName()
	}
	return &LogElement{name: name, message: message}
}

// Name implements Builder
func (l *LogElement) Name() string { return l.name }

// Materialize implements Builder
func (l *LogElement) Materialize(PropertyStore) (*Element, error) {
	if l.message == "" {
		return nil, errors.New("log message is required")
	}
	return &Element{Kind: KindLog, Name: l.name, Message: l.message}, nil
}
