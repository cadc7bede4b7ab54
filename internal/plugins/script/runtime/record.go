package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrNilContext = errors.New("script vars require a non-nil context")
	ErrArity      = errors.New("wrong number of script vars arguments")
)

// Role tells what a record field holds
type Role int

const (
	RoleContext Role = iota
	RoleVars
	RoleProps
	RoleSampler
	RoleLog
	RoleLabel
	RolePrev
	RoleResult
)

// Field is one declared field of a record shape
type Field struct {
	Name string
	Role Role
}

// Shape describes a record type: its name inside the interpreter, its fields in
// declaration order, and how to build it from positional arguments in that order.
type Shape struct {
	TypeName string
	Fields   []Field
	New      func(args []any) (Record, error)
}

// FieldNames returns the declared field names in order
func (s Shape) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Record is the typed bundle of values handed to a script callback
type Record interface {
	Base() *ScriptVars
	Shape() Shape
}

// Script is the single capability a Go-defined script implements
type Script interface {
	Run(vars Record) error
}

// Func adapts a typed function into a Script
type Func[T Record] func(vars T) error

// Run implements Script
func (f Func[T]) Run(vars Record) error {
	typed, ok := vars.(T)
	if !ok {
		var want T
		return fmt.Errorf("script expects %T vars, got %T", want, vars)
	}
	return f(typed)
}

// SampleResult is the outcome of one sample
type SampleResult struct {
	Label        string
	Start        time.Time
	Elapsed      time.Duration
	Success      bool
	ResponseCode string
	Message      string
}

// ScriptVars are the variables every script gets
type ScriptVars struct {
	Ctx     *Context
	Vars    *VarBag
	Props   Properties
	Sampler Sampler
	Log     *slog.Logger
	Label   string
}

// NewScriptVars builds the common variables. Only ctx is mandatory.
func NewScriptVars(ctx *Context, vars *VarBag, props Properties, sampler Sampler, log *slog.Logger, label string) (*ScriptVars, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if vars == nil {
		vars = NewVarBag()
	}
	return &ScriptVars{
		Ctx:     ctx,
		Vars:    vars,
		Props:   props,
		Sampler: sampler,
		Log:     log,
		Label:   label,
	}, nil
}

// Base implements Record
func (v *ScriptVars) Base() *ScriptVars { return v }

// Shape implements Record
func (v *ScriptVars) Shape() Shape { return ScriptVarsShape }

// VarsMap copies the current variables into a plain map, mainly to inspect them while debugging.
// Later changes to the bag are not reflected.
func (v *ScriptVars) VarsMap() map[string]any {
	m := make(map[string]any)
	if v.Vars == nil {
		return m
	}
	for k, val := range v.Vars.Entries() {
		m[k] = val
	}
	return m
}

var baseFields = []Field{
	{Name: "ctx", Role: RoleContext},
	{Name: "vars", Role: RoleVars},
	{Name: "props", Role: RoleProps},
	{Name: "sampler", Role: RoleSampler},
	{Name: "log", Role: RoleLog},
	{Name: "label", Role: RoleLabel},
}

func withFields(extra ...Field) []Field {
	fields := make([]Field, 0, len(baseFields)+len(extra))
	fields = append(fields, baseFields...)
	return append(fields, extra...)
}

// ScriptVarsShape is the shape of the common variables
var ScriptVarsShape = Shape{
	TypeName: "ScriptVars",
	Fields:   withFields(),
	New: func(args []any) (Record, error) {
		base, _, err := fromArgs(withFields(), args)
		if err != nil {
			return nil, err
		}
		return base, nil
	},
}

// PreProcessorVars are passed to scripts run before a sampler
type PreProcessorVars struct {
	ScriptVars
}

// Shape implements Record
func (v *PreProcessorVars) Shape() Shape { return PreProcessorShape }

var PreProcessorShape = Shape{
	TypeName: "PreProcessorVars",
	Fields:   withFields(),
	New: func(args []any) (Record, error) {
		base, _, err := fromArgs(withFields(), args)
		if err != nil {
			return nil, err
		}
		return &PreProcessorVars{ScriptVars: *base}, nil
	},
}

// PostProcessorVars are passed to scripts run after a sampler, with its result as Prev
type PostProcessorVars struct {
	ScriptVars
	Prev *SampleResult
}

// Shape implements Record
func (v *PostProcessorVars) Shape() Shape { return PostProcessorShape }

var postProcessorFields = withFields(Field{Name: "prev", Role: RolePrev})

var PostProcessorShape = Shape{
	TypeName: "PostProcessorVars",
	Fields:   postProcessorFields,
	New: func(args []any) (Record, error) {
		base, byRole, err := fromArgs(postProcessorFields, args)
		if err != nil {
			return nil, err
		}
		prev, err := as[*SampleResult](byRole[RolePrev], "prev")
		if err != nil {
			return nil, err
		}
		return &PostProcessorVars{ScriptVars: *base, Prev: prev}, nil
	},
}

// SamplerVars are passed to scripts acting as samplers. SampleResult is the result being produced.
type SamplerVars struct {
	ScriptVars
	SampleResult *SampleResult
}

// Shape implements Record
func (v *SamplerVars) Shape() Shape { return SamplerShape }

var samplerFields = withFields(Field{Name: "sampleResult", Role: RoleResult})

var SamplerShape = Shape{
	TypeName: "SamplerVars",
	Fields:   samplerFields,
	New: func(args []any) (Record, error) {
		base, byRole, err := fromArgs(samplerFields, args)
		if err != nil {
			return nil, err
		}
		result, err := as[*SampleResult](byRole[RoleResult], "sampleResult")
		if err != nil {
			return nil, err
		}
		return &SamplerVars{ScriptVars: *base, SampleResult: result}, nil
	},
}

// Shapes lists every built-in record shape
func Shapes() []Shape {
	return []Shape{ScriptVarsShape, PreProcessorShape, PostProcessorShape, SamplerShape}
}

func fromArgs(fields []Field, args []any) (*ScriptVars, map[Role]any, error) {
	if len(args) != len(fields) {
		return nil, nil, fmt.Errorf("%w: want %d, got %d", ErrArity, len(fields), len(args))
	}
	byRole := make(map[Role]any, len(fields))
	for i, f := range fields {
		byRole[f.Role] = args[i]
	}

	ctx, err := as[*Context](byRole[RoleContext], "ctx")
	if err != nil {
		return nil, nil, err
	}
	vars, err := as[*VarBag](byRole[RoleVars], "vars")
	if err != nil {
		return nil, nil, err
	}
	props, err := as[Properties](byRole[RoleProps], "props")
	if err != nil {
		return nil, nil, err
	}
	sampler, err := as[Sampler](byRole[RoleSampler], "sampler")
	if err != nil {
		return nil, nil, err
	}
	log, err := as[*slog.Logger](byRole[RoleLog], "log")
	if err != nil {
		return nil, nil, err
	}
	label, err := as[string](byRole[RoleLabel], "label")
	if err != nil {
		return nil, nil, err
	}

	base, err := NewScriptVars(ctx, vars, props, sampler, log, label)
	if err != nil {
		return nil, nil, err
	}
	return base, byRole, nil
}

func as[T any](v any, name string) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("script vars %s: unexpected type %T", name, v)
	}
	return typed, nil
}
