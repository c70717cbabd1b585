// Package log configures the process-wide zerolog logger used by every
// other package (broker, session, transport, pty). Callers derive
// request-scoped loggers from Logger via With().
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the base logger; Configure replaces it before server startup.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Configure sets the global log level and output format. Dev mode renders a
// colorized, human-readable console stream; otherwise output is plain JSON
// suitable for log aggregation.
func Configure(level string, dev bool) {
	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zlevel)

	if dev {
		Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
