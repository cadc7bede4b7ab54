package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/plugins"
)

func init() {
	plugins.RegisterPlugin(&DelayPlugin{})
}

// DelayPlugin pauses the virtual user for the element's duration
type DelayPlugin struct{}

func (dp *DelayPlugin) GetType() string {
	return "delay"
}

// Activity sleeps for the element's duration. Cancelling ctx cuts the pause short.
func (dp *DelayPlugin) Activity(ctx context.Context, req *plugins.Request) (interface{}, error) {
	if req == nil || req.Element == nil || req.Element.Kind != dsl.KindDelay {
		return nil, fmt.Errorf("delay activity requires a delay element")
	}
	d, err := time.ParseDuration(req.Element.Duration)
	if err != nil {
		return nil, fmt.Errorf("invalid duration format: %w", err)
	}

	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return &ActivityResponse{Slept: time.Since(start)}, nil
	case <-ctx.Done():
		return &ActivityResponse{Slept: time.Since(start)}, ctx.Err()
	}
}
