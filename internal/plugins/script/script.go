package script

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketship-ai/loadplan/internal/plugins"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/executors"
)

// Auto-register the plugin when the package is imported
func init() {
	plugins.RegisterPlugin(&ScriptPlugin{})
}

// ScriptPlugin executes pre-processor, post-processor and sampler elements
type ScriptPlugin struct{}

// GetType returns the plugin type for registration
func (p *ScriptPlugin) GetType() string {
	return "script"
}

// Activity executes the element's script with the request bindings as globals.
// Errors raised by Go-defined scripts are wrapped, never replaced.
func (p *ScriptPlugin) Activity(ctx context.Context, req *plugins.Request) (interface{}, error) {
	if req == nil || req.Element == nil {
		return nil, fmt.Errorf("script activity requires an element")
	}
	el := req.Element
	if !el.Kind.IsScript() {
		return nil, fmt.Errorf("element %q of kind %s has no script", el.Name, el.Kind)
	}

	language := el.Language
	if language == "" {
		language = executors.DefaultLanguage
	}

	// Create executor for the specified language
	executor, err := executors.NewExecutor(language)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	if err := executor.ValidateScript(el.Script); err != nil {
		return nil, fmt.Errorf("script validation failed: %w", err)
	}

	if req.Logger != nil {
		req.Logger.Debug("executing script", "language", executor.Language())
	}

	start := time.Now()
	if err := executor.Execute(ctx, el.Script, req.Context, req.Bindings); err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	return &ActivityResponse{
		Language: executor.Language(),
		Duration: time.Since(start),
	}, nil
}
