package executors

import (
	"context"
	"fmt"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

const (
	LanguageJavaScript = "javascript"
	LanguageShell      = "shell"
)

// DefaultLanguage is the language script elements use unless told otherwise
const DefaultLanguage = LanguageJavaScript

// Executor defines the interface for all script language executors
type Executor interface {
	// Execute runs the script with the given context and bindings as globals
	Execute(ctx context.Context, script string, rc *runtime.Context, bindings runtime.Bindings) error

	// Language returns the language identifier for this executor
	Language() string

	// ValidateScript performs static validation of the script
	ValidateScript(script string) error
}

// NewExecutor creates a new executor for the specified language
func NewExecutor(language string) (Executor, error) {
	switch language {
	case LanguageJavaScript, "js":
		return NewJavaScriptExecutor(), nil
	case LanguageShell:
		return NewShellExecutor(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", language)
	}
}

// GetSupportedLanguages returns a list of all supported languages
func GetSupportedLanguages() []string {
	return []string{LanguageJavaScript, LanguageShell}
}
