package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It writes to stderr: stdout is reserved
// for the JSON standings array.
var Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

func Init(isDev bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if isDev {
		Log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}).With().Timestamp().Logger()
	} else {
		Log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// SetLevel parses a zerolog level name; unknown names keep the current level.
func SetLevel(level string) {
	if level == "" {
		return
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(l)
	}
}

func IsDev() bool {
	env := os.Getenv("ENV")
	return env == "" || env == "dev" || env == "development"
}
