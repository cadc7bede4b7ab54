package runtime

import (
	"fmt"

	"github.com/google/uuid"
)

// Mode describes where a plan is executed relative to the process that built it
type Mode int

const (
	// ModeEmbedded runs the plan in the building process, so Go-defined scripts are reachable
	ModeEmbedded Mode = iota
	// ModeRemote runs the plan on an engine that does not share memory with the builder
	// (distributed workers, GUI evaluation, hosted engines)
	ModeRemote
)

func (m Mode) String() string {
	switch m {
	case ModeEmbedded:
		return "embedded"
	case ModeRemote:
		return "remote"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "embedded":
		return ModeEmbedded, nil
	case "remote":
		return ModeRemote, nil
	default:
		return ModeEmbedded, fmt.Errorf("unknown execution mode: %q", s)
	}
}

// Context is the execution context handle scripts receive as ctx
type Context struct {
	RunID       uuid.UUID
	ThreadGroup string
	ThreadNum   int
	Iteration   int
	Mode        Mode

	// Variables is the virtual user's variable bag, shared by every element it runs
	Variables *VarBag
}

// NewContext creates the context for one virtual user. A nil bag is replaced by an empty one.
func NewContext(runID uuid.UUID, threadGroup string, threadNum int, mode Mode, vars *VarBag) *Context {
	if vars == nil {
		vars = NewVarBag()
	}
	return &Context{
		RunID:       runID,
		ThreadGroup: threadGroup,
		ThreadNum:   threadNum,
		Mode:        mode,
		Variables:   vars,
	}
}

// Embedded reports whether Go-defined scripts can be resolved in this context
func (c *Context) Embedded() bool {
	return c != nil && c.Mode == ModeEmbedded
}

// ThreadName mirrors the "<group> <n>-<n>" naming load runners use for virtual users
func (c *Context) ThreadName() string {
	return fmt.Sprintf("%s 1-%d", c.ThreadGroup, c.ThreadNum+1)
}

// Bindings are the ambient values exposed to a script as globals, keyed by binding name.
// An absent value must be stored as an untyped nil.
type Bindings map[string]any

// Properties is the shared property store as seen from scripts
type Properties interface {
	Get(key string) any
	Put(key string, value any)
}

// Sampler is the element a script runs under
type Sampler interface {
	Name() string
}
