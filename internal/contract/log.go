package contract

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logMu  sync.RWMutex
	logOut io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
)

// NewLogger returns a logger tagged with the given component, writing to stderr by default.
func NewLogger(component string) zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return zerolog.New(logOut).With().Timestamp().Str("component", component).Logger()
}

// SetLogOutput redirects loggers created after the call. Tests use it to capture logs.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOut = w
}

// SetLogLevel sets the global level from a name such as "debug" or "warn".
func SetLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
