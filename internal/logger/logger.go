// Package logger provides the process-wide zerolog logger plus the privacy
// helpers used wherever user data reaches a log line.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger. Level and output format are applied from config
// at startup; until then it logs at info to a console writer.
var Log zerolog.Logger

func init() {
	Log = newConsole(os.Stdout)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func newConsole(out io.Writer) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel applies a configured level name. Unknown or empty names fall back
// to info rather than erroring: logging config must never stop startup.
func SetLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetJSON switches the logger to plain JSON output for non-interactive runs.
func SetJSON() {
	Log = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}
