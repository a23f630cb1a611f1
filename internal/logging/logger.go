package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Interface describes the minimal logging interface the scanner relies on.
type Interface interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var (
	mu           sync.Mutex
	globalLogger Interface
)

// Logger returns the process logger, creating a console logger at info
// level on first use.
func Logger() Interface {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		globalLogger = New(os.Stderr, zerolog.InfoLevel, "console")
	}
	return globalLogger
}

// Init replaces the process logger. level is one of debug, info, warn,
// error; format is console or json.
func Init(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	switch format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	mu.Lock()
	defer mu.Unlock()
	globalLogger = New(os.Stderr, lvl, format)
	return nil
}

// ParseLevel converts a config level name.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return lvl, nil
}

// New builds a zerolog-backed logger writing to w.
func New(w io.Writer, level zerolog.Level, format string) Interface {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	base := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zerologAdapter{log: base}
}

// Nop discards everything.
func Nop() Interface {
	return &zerologAdapter{log: zerolog.Nop()}
}

type zerologAdapter struct {
	log zerolog.Logger
}

func (l *zerologAdapter) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologAdapter) Infof(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologAdapter) Warnf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l *zerologAdapter) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}
