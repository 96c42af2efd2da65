package sentry

import (
	"io"
	"strings"

	gosentry "github.com/getsentry/sentry-go"
)

// Level represents the severity level for the sentry writer.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Writer wraps an io.Writer and forwards log messages to Sentry. Errors
// become Sentry events; warnings and info become breadcrumbs. When sentry
// is disabled the writer is a plain passthrough.
type Writer struct {
	inner io.Writer
	level Level
}

// NewWriter creates a Writer that tees to inner and forwards to Sentry.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level}
}

func (w *Writer) Write(p []byte) (int, error) {
	// The original destination always gets the bytes first.
	n, err := w.inner.Write(p)

	if !enabled {
		return n, err
	}

	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return n, err
	}
	w.forward(msg)
	return n, err
}

func (w *Writer) forward(msg string) {
	if w.level == LevelError {
		gosentry.CaptureMessage(msg)
		return
	}

	level := gosentry.LevelInfo
	if w.level == LevelWarning {
		level = gosentry.LevelWarning
	}
	gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
		Level:    level,
		Category: "log",
		Message:  msg,
	})
}
