// Package log provides the application's file-backed loggers. The TUI owns
// stdout, so everything below fatal goes to a log file under the config
// directory; errors and warnings are mirrored to Sentry when telemetry is
// enabled.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/tallyview/tally/internal/sentry"
)

var (
	InfoLog    = stdlog.New(io.Discard, "INFO: ", stdlog.LstdFlags|stdlog.Lshortfile)
	WarningLog = stdlog.New(io.Discard, "WARNING: ", stdlog.LstdFlags|stdlog.Lshortfile)
	ErrorLog   = stdlog.New(io.Discard, "ERROR: ", stdlog.LstdFlags|stdlog.Lshortfile)
	DebugLog   = stdlog.New(io.Discard, "DEBUG: ", stdlog.LstdFlags|stdlog.Lshortfile)
)

var logFile *os.File

// Initialize opens the log file and points the global loggers at it.
// Verbose additionally enables the debug logger. Failures fall back to
// discarding output; the TUI must never lose its terminal to stray prints.
func Initialize(verbose bool) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	logDir := filepath.Join(dir, ".config", "tally")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}

	path := filepath.Join(logDir, "tally.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	logFile = f

	InfoLog.SetOutput(sentry.NewWriter(f, sentry.LevelInfo))
	WarningLog.SetOutput(sentry.NewWriter(f, sentry.LevelWarning))
	ErrorLog.SetOutput(sentry.NewWriter(f, sentry.LevelError))
	if verbose {
		DebugLog.SetOutput(f)
	}
}

// Close flushes and closes the log file and detaches the global loggers.
func Close() {
	InfoLog.SetOutput(io.Discard)
	WarningLog.SetOutput(io.Discard)
	ErrorLog.SetOutput(io.Discard)
	DebugLog.SetOutput(io.Discard)
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}

// Location returns the log file path, empty when logging is not
// initialized.
func Location() string {
	if logFile == nil {
		return ""
	}
	return logFile.Name()
}

// Errorf logs to the error logger and returns the formatted error, for
// call sites that both log and propagate.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	ErrorLog.Output(2, err.Error())
	return err
}
