package dsl

import (
	"fmt"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// ElementKind is the kind of a plan element
type ElementKind string

const (
	KindPreProcessor  ElementKind = "preprocessor"
	KindPostProcessor ElementKind = "postprocessor"
	KindSampler       ElementKind = "sampler"
	KindDelay         ElementKind = "delay"
	KindLog           ElementKind = "log"
)

// Plugin returns the plugin type that executes elements of this kind
func (k ElementKind) Plugin() string {
	switch k {
	case KindDelay:
		return "delay"
	case KindLog:
		return "log"
	case KindPreProcessor, KindPostProcessor, KindSampler:
		return "script"
	default:
		return string(k)
	}
}

// DefaultName is the element name used when none is given
func (k ElementKind) DefaultName() string {
	switch k {
	case KindPreProcessor:
		return "Script PreProcessor"
	case KindPostProcessor:
		return "Script PostProcessor"
	case KindSampler:
		return "Script Sampler"
	case KindDelay:
		return "Constant Timer"
	case KindLog:
		return "Log Message"
	default:
		return string(k)
	}
}

// IsScript reports whether elements of this kind carry a script
func (k ElementKind) IsScript() bool {
	switch k {
	case KindPreProcessor, KindPostProcessor, KindSampler:
		return true
	default:
		return false
	}
}

// Shape returns the record shape scripts of this kind receive
func (k ElementKind) Shape() (runtime.Shape, error) {
	switch k {
	case KindPreProcessor:
		return runtime.PreProcessorShape, nil
	case KindPostProcessor:
		return runtime.PostProcessorShape, nil
	case KindSampler:
		return runtime.SamplerShape, nil
	default:
		return runtime.Shape{}, fmt.Errorf("element kind %q has no script vars", k)
	}
}

// ParseKind validates an element kind name
func ParseKind(s string) (ElementKind, error) {
	switch k := ElementKind(s); k {
	case KindPreProcessor, KindPostProcessor, KindSampler, KindDelay, KindLog:
		return k, nil
	default:
		return "", fmt.Errorf("unknown element kind: %q", s)
	}
}

// Element is the runner-native form of a plan element.
// Script text is stored verbatim, including generated binding text.
type Element struct {
	Kind     ElementKind `json:"kind" yaml:"kind"`
	Name     string      `json:"name" yaml:"name"`
	Language string      `json:"language,omitempty" yaml:"language,omitempty"`
	Script   string      `json:"script,omitempty" yaml:"script,omitempty"`
	Duration string      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Message  string      `json:"message,omitempty" yaml:"message,omitempty"`
}

// Builder produces an Element when the plan is built
type Builder interface {
	Name() string
	Materialize(store PropertyStore) (*Element, error)
}

// Releaser is implemented by builders that hold process-wide resources until the plan is closed
type Releaser interface {
	Release(store PropertyStore)
}
