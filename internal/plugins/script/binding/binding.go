// Package binding generates the interpreter source that connects a script element to a
// Go-defined script held in the registry.
//
// The generated text looks the script up by identifier, rebuilds its record from the
// interpreter globals and runs it:
//
//	// Scripts defined in Go code only run in embedded execution (not in GUI or remote engines).
//	let cb = registry.lookup("GoScript1")
//	cb.run(new PreProcessorVars(ctx,vars,props,sampler,log,Label))
//
// Output depends only on its inputs, so the same identifier, shape and remapping always
// give byte-identical text.
package binding

import (
	"strconv"
	"strings"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// Header is the first line of every generated script
const Header = "// Scripts defined in Go code only run in embedded execution (not in GUI or remote engines)."

const paramSeparator = ","

// Parameters returns the argument list for a shape's constructor: declared fields in
// order, each replaced by its remapped name when remap has one.
func Parameters(shape runtime.Shape, remap map[string]string) []string {
	params := make([]string, len(shape.Fields))
	for i, f := range shape.Fields {
		if mapped, ok := remap[f.Name]; ok {
			params[i] = mapped
		} else {
			params[i] = f.Name
		}
	}
	return params
}

// Generate builds the binding text for the script registered under id
func Generate(id string, shape runtime.Shape, remap map[string]string) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\nlet cb = registry.lookup(")
	b.WriteString(strconv.Quote(id))
	b.WriteString(")\ncb.run(new ")
	b.WriteString(shape.TypeName)
	b.WriteString("(")
	b.WriteString(strings.Join(Parameters(shape, remap), paramSeparator))
	b.WriteString("))")
	return b.String()
}
