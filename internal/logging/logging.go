// Package logging configures the standard logger from LogConfig.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"doccompare/internal/config"
)

var debug atomic.Bool

// Setup applies cfg to the standard logger. The "json" format logs without
// timestamp flags; any other format logs with microsecond timestamps.
func Setup(cfg config.LogConfig) {
	SetupWriter(os.Stderr, cfg)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, cfg config.LogConfig) {
	log.SetOutput(w)
	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFlags(0)
		log.SetPrefix("doccompare ")
	default:
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
		log.SetPrefix("")
	}
	debug.Store(strings.EqualFold(cfg.Level, "debug"))
}

// Debugf logs only when the configured level is debug.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Printf(format, args...)
	}
}
