// Package logging configures the process-wide slog default logger from
// the LOG_LEVEL environment variable.
//
// Grounded on the teacher's util.InitSlog (util/logutil.go): same
// variable name, same four levels, same fallback to info on an
// unrecognized value. Carried over verbatim in spirit since every
// component in this module logs through slog, not fmt.Println, and
// there's no reason to reinvent a working ambient-logging convention.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures slog based on the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error. If LOG_LEVEL is unset,
// slog's existing default is left untouched.
func Init() {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
