package debug

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log     = newLogger(os.Stderr)
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// Enable starts debug logging to ~/.config/go-pianoroll/debug.log
func Enable() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "go-pianoroll")

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = f
	mu.Unlock()

	EnableTo(f)
	return nil
}

// EnableTo starts debug logging to w.
func EnableTo(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	log.SetOutput(w)
	log.SetLevel(logrus.DebugLevel)
	enabled = true
	log.WithField("category", "debug").Debug("=== Debug logging started ===")
}

// Disable stops debug logging. Warnings still go to stderr.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	enabled = false
}

// Enabled reports whether debug messages are being written.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	log.WithField("category", category).Debugf(format, args...)
}

// Warn logs a non-fatal problem. It is written whether or not debug
// logging is enabled.
func Warn(category, format string, args ...any) {
	log.WithField("category", category).Warnf(format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
