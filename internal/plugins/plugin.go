package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// Request is one element execution handed to a plugin by the runner
type Request struct {
	Element  *dsl.Element
	Context  *runtime.Context
	Bindings runtime.Bindings
	Logger   *slog.Logger
}

type Plugin interface {
	GetType() string
	Activity(ctx context.Context, req *Request) (interface{}, error)
}

// Global plugin registry
var (
	registry          = make(map[string]Plugin)
	registryMu        sync.RWMutex
	registeredPlugins []Plugin
)

// RegisterPlugin registers a plugin in the global registry
func RegisterPlugin(plugin Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()

	pluginType := plugin.GetType()
	if _, exists := registry[pluginType]; exists {
		panic(fmt.Sprintf("plugin %s is already registered", pluginType))
	}

	registry[pluginType] = plugin
	registeredPlugins = append(registeredPlugins, plugin)
}

// GetPlugin retrieves a plugin by type from the registry
func GetPlugin(pluginType string) (Plugin, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	plugin, exists := registry[pluginType]
	return plugin, exists
}

// GetRegisteredPlugins returns all registered plugins
func GetRegisteredPlugins() []Plugin {
	registryMu.RLock()
	defer registryMu.RUnlock()

	// Return a copy to prevent external modification
	plugins := make([]Plugin, len(registeredPlugins))
	copy(plugins, registeredPlugins)
	return plugins
}

// ForElement returns the plugin that executes elements of el's kind
func ForElement(el *dsl.Element) (Plugin, error) {
	if el == nil {
		return nil, fmt.Errorf("nil element")
	}
	pluginType := el.Kind.Plugin()
	plugin, ok := GetPlugin(pluginType)
	if !ok {
		return nil, fmt.Errorf("no plugin registered for %s elements (type %s)", el.Kind, pluginType)
	}
	return plugin, nil
}
