package cli

import (
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel selects the log level: DEBUG, INFO, WARN or ERROR
const EnvLogLevel = "LOADPLAN_LOG"

// Logger is the global logger instance
var Logger = slog.Default()

// InitLogging initializes the logger with the appropriate level based on environment
func InitLogging() {
	level := new(slog.LevelVar)

	switch strings.ToUpper(os.Getenv(EnvLogLevel)) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Replace the default logger
	slog.SetDefault(Logger)
}
