package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-press/internal/logging/console"
	"github.com/goliatone/go-press/internal/logging/gologger"
)

// configureLogging resolves the logger provider from configuration when the
// host did not supply one. A disabled logging feature leaves the provider nil;
// logging.ModuleLogger treats nil providers as no-op.
func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: consoleLevel(c.Config.Logging.Level),
		})
	}
	return nil
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}
