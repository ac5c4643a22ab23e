// Package logtrace configures the process-wide zerolog logger. The CLI keeps
// the logger silent unless debug output is requested, so that diagnostic lines
// never mix with command output.
package logtrace

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLoggerTo initializes the global logger writing to w. With debug unset the
// logger is disabled.
func InitLoggerTo(w io.Writer, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.Disabled
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}
