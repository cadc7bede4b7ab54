package interpreter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// LabelStats aggregates the samples recorded under one label
type LabelStats struct {
	Samples  int
	Failures int
	Elapsed  time.Duration
}

// Average returns the mean sample time
func (l LabelStats) Average() time.Duration {
	if l.Samples == 0 {
		return 0
	}
	return l.Elapsed / time.Duration(l.Samples)
}

// ElementError is a failed element execution. It unwraps to the plugin error, so errors
// returned by Go-defined scripts can be matched with errors.Is.
type ElementError struct {
	Thread    string
	Iteration int
	Element   string
	Kind      dsl.ElementKind
	Err       error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s iteration %d: %s %q: %v", e.Thread, e.Iteration, e.Kind, e.Element, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Stats is the outcome of a run
type Stats struct {
	RunID    uuid.UUID
	Mode     runtime.Mode
	Started  time.Time
	Finished time.Time

	mu     sync.Mutex
	labels map[string]*LabelStats
	errors []*ElementError
}

func newStats(runID uuid.UUID, mode runtime.Mode) *Stats {
	return &Stats{
		RunID:   runID,
		Mode:    mode,
		Started: time.Now(),
		labels:  make(map[string]*LabelStats),
	}
}

func (s *Stats) recordSample(result *runtime.SampleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.labels[result.Label]
	if !ok {
		ls = &LabelStats{}
		s.labels[result.Label] = ls
	}
	ls.Samples++
	ls.Elapsed += result.Elapsed
	if !result.Success {
		ls.Failures++
	}
}

func (s *Stats) recordError(err *ElementError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
}

// Labels returns the sample labels in sorted order
func (s *Stats) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.labels))
}

// Label returns the aggregate for label
func (s *Stats) Label(label string) LabelStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.labels[label]; ok {
		return *ls
	}
	return LabelStats{}
}

// Totals sums samples and failures over every label
func (s *Stats) Totals() (samples, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ls := range s.labels {
		samples += ls.Samples
		failures += ls.Failures
	}
	return samples, failures
}

// Errors returns the element errors in the order they were recorded
func (s *Stats) Errors() []*ElementError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.errors)
}

// Err joins every element error, or returns nil when none occurred
func (s *Stats) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := make([]error, len(s.errors))
	for i, e := range s.errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Duration is the wall time of the run
func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
