// Package log wraps zerolog with the process-wide logger used by every component.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how the base logger is built.
type Config struct {
	Level   string    // "debug", "info", ... (defaults to LOG_LEVEL, then info)
	Output  io.Writer // defaults to os.Stdout
	Service string    // attached to every entry
	Pretty  bool      // human readable console output for local development
}

var (
	once sync.Once
	mu   sync.RWMutex
	base zerolog.Logger
)

// Configure builds the base logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		setBase(build(cfg))
	})
}

func build(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	raw := cfg.Level
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = os.Stdout
	if cfg.Output != nil {
		writer = cfg.Output
	}
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}

	service := cfg.Service
	if service == "" {
		service = "vidfetch"
	}

	return zerolog.New(writer).With().
		Timestamp().
		Str(FieldService, service).
		Logger()
}

func setBase(l zerolog.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	Configure(Config{})
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}

// Replace swaps the base logger until the returned restore func is called.
// Tests use it to capture output.
func Replace(l zerolog.Logger) (restore func()) {
	prev := Base()
	setBase(l)
	return func() { setBase(prev) }
}
