// Package logging builds the process-wide zerolog logger. Logs always go to
// stderr; stdout is reserved for the run summary so scripted callers can
// capture it cleanly.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger in the requested format: "text" for a
// human-friendly console during interactive runs, anything else for JSON
// lines suitable for log aggregation.
func Setup(format string) zerolog.Logger {
	var w zerolog.LevelWriter = zerolog.MultiLevelWriter(os.Stderr)
	if strings.EqualFold(format, "text") {
		w = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
