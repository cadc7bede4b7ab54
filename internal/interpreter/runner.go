// Package interpreter runs built plans in process.
//
// Each virtual user is a goroutine with its own variable bag and its own script VMs.
// Element failures are recorded in the returned Stats and do not stop the run; only
// cancellation of the context does.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/plugins"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
	"github.com/rocketship-ai/loadplan/internal/props"
	"golang.org/x/sync/errgroup"

	// plugins
	_ "github.com/rocketship-ai/loadplan/internal/plugins/delay"
	_ "github.com/rocketship-ai/loadplan/internal/plugins/log"
	_ "github.com/rocketship-ai/loadplan/internal/plugins/script"
)

// Options configure a run
type Options struct {
	// Mode selects embedded or remote execution. Remote runs get a fresh property store
	// holding only defaults and plan properties, as an engine in another process would.
	Mode runtime.Mode
	// Store is the property store scripts see in embedded mode. Defaults to props.Shared.
	Store *props.Store
	// Logger receives run and element logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// elementSampler is the sampler binding: the element currently running
type elementSampler struct {
	name string
}

func (s *elementSampler) Name() string { return s.name }

type step struct {
	element *dsl.Element
	plugin  plugins.Plugin
	sampler *elementSampler
}

type runner struct {
	plan   *dsl.BuiltPlan
	steps  []step
	store  *props.Store
	mode   runtime.Mode
	runID  uuid.UUID
	logger *slog.Logger
	stats  *Stats
}

// Run executes plan with plan.Threads virtual users, each running every element
// plan.Iterations times in order. It returns an error only when the plan cannot start
// or ctx is done; element failures are in Stats.
func Run(ctx context.Context, plan *dsl.BuiltPlan, opts Options) (*Stats, error) {
	if plan == nil {
		return nil, errors.New("nil plan")
	}
	if plan.Threads < 1 || plan.Iterations < 1 {
		return nil, fmt.Errorf("plan %q: threads and iterations must be at least 1", plan.Name)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	steps := make([]step, 0, len(plan.Elements))
	for i, el := range plan.Elements {
		plugin, err := plugins.ForElement(el)
		if err != nil {
			return nil, fmt.Errorf("plan %q: element %d: %w", plan.Name, i, err)
		}
		steps = append(steps, step{element: el, plugin: plugin, sampler: &elementSampler{name: el.Name}})
	}

	r := &runner{
		plan:  plan,
		steps: steps,
		store: storeFor(plan, opts),
		mode:  opts.Mode,
		runID: uuid.New(),
	}
	r.logger = logger.With("run_id", r.runID.String(), "plan", plan.Name)
	r.stats = newStats(r.runID, r.mode)

	r.logger.Info("starting plan",
		"mode", r.mode.String(),
		"threads", plan.Threads,
		"iterations", plan.Iterations,
		"elements", len(plan.Elements))

	g, gctx := errgroup.WithContext(ctx)
	for thread := 0; thread < plan.Threads; thread++ {
		g.Go(func() error {
			return r.runThread(gctx, thread)
		})
	}
	err := g.Wait()
	r.stats.Finished = time.Now()

	samples, failures := r.stats.Totals()
	r.logger.Info("plan finished",
		"samples", samples,
		"failures", failures,
		"errors", len(r.stats.Errors()),
		"duration", r.stats.Duration())

	if err != nil {
		return r.stats, fmt.Errorf("plan %q: %w", plan.Name, err)
	}
	return r.stats, nil
}

func storeFor(plan *dsl.BuiltPlan, opts Options) *props.Store {
	if opts.Mode == runtime.ModeEmbedded {
		if opts.Store != nil {
			return opts.Store
		}
		return props.Shared
	}
	remote := props.New()
	remote.Init(props.Defaults)
	remote.PutAll(plan.Properties)
	return remote
}

func (r *runner) runThread(ctx context.Context, thread int) error {
	rc := runtime.NewContext(r.runID, r.plan.Name, thread, r.mode, nil)
	logger := r.logger.With("thread", rc.ThreadName())
	logger.Debug("virtual user started")

	var prev *runtime.SampleResult
	for iteration := 0; iteration < r.plan.Iterations; iteration++ {
		rc.Iteration = iteration
		for _, s := range r.steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := r.runStep(ctx, rc, logger, s, prev)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				elErr := &ElementError{
					Thread:    rc.ThreadName(),
					Iteration: iteration,
					Element:   s.element.Name,
					Kind:      s.element.Kind,
					Err:       err,
				}
				r.stats.recordError(elErr)
				logger.Warn("element failed", "element", s.element.Name, "iteration", iteration, "error", err)
			}
			if result != nil {
				r.stats.recordSample(result)
				prev = result
			}
		}
	}
	logger.Debug("virtual user finished")
	return nil
}

// runStep executes one element. Samplers always produce a result, failed or not.
func (r *runner) runStep(ctx context.Context, rc *runtime.Context, logger *slog.Logger, s step, prev *runtime.SampleResult) (*runtime.SampleResult, error) {
	el := s.element
	elLogger := logger.With("element", el.Name)

	var result *runtime.SampleResult
	if el.Kind == dsl.KindSampler {
		result = &runtime.SampleResult{Label: el.Name, Start: time.Now(), Success: true}
	}

	req := &plugins.Request{
		Element:  el,
		Context:  rc,
		Bindings: r.bindings(rc, elLogger, s, prev, result),
		Logger:   elLogger,
	}
	_, err := s.plugin.Activity(ctx, req)

	if result != nil {
		if result.Elapsed == 0 {
			result.Elapsed = time.Since(result.Start)
		}
		if err != nil {
			result.Success = false
			result.Message = err.Error()
		}
	}
	return result, err
}

// bindings are the globals of one element execution. Absent values are untyped nils.
func (r *runner) bindings(rc *runtime.Context, logger *slog.Logger, s step, prev, result *runtime.SampleResult) runtime.Bindings {
	b := runtime.Bindings{
		"ctx":          rc,
		"vars":         rc.Variables,
		"props":        r.store,
		"sampler":      s.sampler,
		"log":          logger,
		"Label":        s.element.Name,
		"prev":         nil,
		"SampleResult": nil,
	}
	if prev != nil {
		b["prev"] = prev
	}
	if result != nil {
		b["SampleResult"] = result
	}
	return b
}
