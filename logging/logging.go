package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"lautenbacher.net/ws2812spi/config"
)

// teeWriter sends log output to a live target or, while held, into a
// memory buffer. Every write is copied to the log file as well, if there
// is one.
type teeWriter struct {
	mu     sync.Mutex
	held   bytes.Buffer
	target io.Writer
	file   *os.File
	hold   bool
}

func (w *teeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.hold {
		w.held.Write(p)
	} else if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}
	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

// writer goes to stderr until Init replaces it.
var writer = &teeWriter{target: os.Stderr}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog.Level.
// Everything else is INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the default slog logger. With hold set, output is kept in
// memory until Attach is called; this keeps early messages from garbling a
// terminal UI that is still starting. Otherwise it goes to stderr.
func Init(conf config.LoggingConfig, hold bool) error {
	writer = &teeWriter{hold: hold}
	if !hold {
		writer.target = os.Stderr
	}

	if conf.File != "" {
		file, err := os.OpenFile(conf.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writer.file = file
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(conf.Level),
	}
	var handler slog.Handler
	if strings.ToLower(conf.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Attach flushes held output to target and logs to it from now on.
func Attach(target io.Writer) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.held.Len() > 0 {
		if _, err := target.Write(writer.held.Bytes()); err != nil {
			return err
		}
		writer.held.Reset()
	}
	writer.target = target
	writer.hold = false
	return nil
}

// Hold stops live output and starts buffering again, e.g. before the
// terminal UI shuts down.
func Hold() {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	writer.target = nil
	writer.hold = true
}

// Close writes out anything still held and closes the log file. Held
// output goes to the file when there is one and to stderr otherwise.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error
	if writer.file != nil {
		// The file already received every line as it was logged.
		if err := writer.file.Close(); err != nil {
			firstErr = err
		}
		writer.file = nil
	} else if writer.held.Len() > 0 {
		if _, err := os.Stderr.Write(writer.held.Bytes()); err != nil {
			firstErr = err
		}
	}
	writer.held.Reset()
	return firstErr
}
