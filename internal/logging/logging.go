// Package logging configures the process-wide zerolog logger shared by the
// planloom CLI and the document pipeline.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init routes the global logger through a console writer on stderr.
// Verbose enables debug output for pipeline internals.
func Init(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// Component returns a child of the global logger tagged with a pipeline
// component name, so classify/extract/analyze output can be told apart.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
