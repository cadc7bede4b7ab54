package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/plugins"
)

// Auto-register the plugin when the package is imported
func init() {
	plugins.RegisterPlugin(&LogPlugin{})
}

// LogPlugin writes log elements' messages to the element logger
type LogPlugin struct{}

// GetType returns the plugin type identifier
func (lp *LogPlugin) GetType() string {
	return "log"
}

// Activity expands ${name} references from the virtual user's variables and logs the result
func (lp *LogPlugin) Activity(ctx context.Context, req *plugins.Request) (interface{}, error) {
	if req == nil || req.Element == nil || req.Element.Kind != dsl.KindLog {
		return nil, fmt.Errorf("log activity requires a log element")
	}
	if req.Element.Message == "" {
		return nil, fmt.Errorf("message is required")
	}

	message := req.Element.Message
	if req.Context != nil && req.Context.Variables != nil {
		message = req.Context.Variables.Expand(message)
	}

	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, message)

	return &LogActivityResponse{LogMessage: message}, nil
}
