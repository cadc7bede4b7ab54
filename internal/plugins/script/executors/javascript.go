package executors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dop251/goja"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/registry"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// JavaScriptExecutor executes JavaScript code using the goja engine.
//
// Besides the bindings, every VM gets a constructor per record shape and a registry
// object whose lookup resolves Go-defined scripts from the props binding.
type JavaScriptExecutor struct {
	shapes []runtime.Shape
}

// NewJavaScriptExecutor creates a new JavaScript executor
func NewJavaScriptExecutor() *JavaScriptExecutor {
	return &JavaScriptExecutor{shapes: runtime.Shapes()}
}

// Language returns the language identifier
func (e *JavaScriptExecutor) Language() string {
	return LanguageJavaScript
}

// ValidateScript performs static validation of JavaScript code
func (e *JavaScriptExecutor) ValidateScript(script string) error {
	_, err := goja.Compile("validation", script, false)
	if err != nil {
		return fmt.Errorf("javascript syntax error: %w", err)
	}
	return nil
}

// vmSession is one script evaluation. hostErr keeps the first Go error thrown into the VM
// so callers can match it with errors.Is.
type vmSession struct {
	vm      *goja.Runtime
	rc      *runtime.Context
	hostErr error
}

func (s *vmSession) raise(err error) {
	if s.hostErr == nil {
		s.hostErr = err
	}
	panic(s.vm.NewGoError(err))
}

// Execute runs the JavaScript code. Cancelling ctx interrupts the VM.
func (e *JavaScriptExecutor) Execute(ctx context.Context, script string, rc *runtime.Context, bindings runtime.Bindings) (err error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	s := &vmSession{vm: vm, rc: rc}

	e.setupBindings(vm, bindings)
	e.setupConstructors(s)
	e.setupRegistry(s, bindings)

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("javascript panic: %v", r)
		}
	}()

	if _, runErr := vm.RunString(script); runErr != nil {
		if s.hostErr != nil {
			return fmt.Errorf("javascript execution error: %w", s.hostErr)
		}
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) {
			return fmt.Errorf("javascript execution interrupted: %w", context.Cause(ctx))
		}
		return fmt.Errorf("javascript execution error: %w", runErr)
	}
	return nil
}

// setupBindings injects the ambient values plus a console that writes to the log binding
func (e *JavaScriptExecutor) setupBindings(vm *goja.Runtime, bindings runtime.Bindings) {
	for name, value := range bindings {
		if value == nil {
			_ = vm.Set(name, goja.Null())
			continue
		}
		_ = vm.Set(name, value)
	}

	logger, _ := bindings["log"].(*slog.Logger)
	if logger == nil {
		logger = slog.Default()
	}
	console := vm.NewObject()
	_ = console.Set("log", func(args ...interface{}) {
		logger.Info(fmt.Sprint(args...))
	})
	_ = vm.Set("console", console)
}

// setupConstructors makes every record shape constructible with new <TypeName>(...)
func (e *JavaScriptExecutor) setupConstructors(s *vmSession) {
	for _, shape := range e.shapes {
		_ = s.vm.Set(shape.TypeName, func(call goja.ConstructorCall) *goja.Object {
			args := make([]any, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = exportValue(a)
			}
			rec, err := shape.New(args)
			if err != nil {
				s.raise(fmt.Errorf("new %s: %w", shape.TypeName, err))
			}
			return s.vm.ToValue(rec).ToObject(s.vm)
		})
	}
}

// setupRegistry injects registry.lookup, which resolves identifiers against the props binding
func (e *JavaScriptExecutor) setupRegistry(s *vmSession, bindings runtime.Bindings) {
	store, _ := bindings["props"].(runtime.Properties)

	reg := s.vm.NewObject()
	_ = reg.Set("lookup", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		script, err := resolve(store, id, s.rc)
		if err != nil {
			s.raise(err)
		}
		return e.wrapScript(s, script)
	})
	_ = s.vm.Set("registry", reg)
}

// wrapScript exposes a Go-defined script as an object with a run method
func (e *JavaScriptExecutor) wrapScript(s *vmSession, script runtime.Script) goja.Value {
	obj := s.vm.NewObject()
	_ = obj.Set("run", func(call goja.FunctionCall) goja.Value {
		rec, ok := exportValue(call.Argument(0)).(runtime.Record)
		if !ok {
			s.raise(fmt.Errorf("run expects script vars, got %s", call.Argument(0).String()))
		}
		if err := script.Run(rec); err != nil {
			s.raise(err)
		}
		return goja.Undefined()
	})
	return obj
}

func resolve(store runtime.Properties, id string, rc *runtime.Context) (runtime.Script, error) {
	mode := runtime.ModeEmbedded
	if rc != nil {
		mode = rc.Mode
	}
	if store == nil {
		return nil, registry.Missing(id, mode)
	}
	script, ok := store.Get(id).(runtime.Script)
	if !ok {
		return nil, registry.Missing(id, mode)
	}
	return script, nil
}

func exportValue(v goja.Value) any {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}
