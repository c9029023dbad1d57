// Package debug is an opt-in category logger for tracing the codec and the
// tools. Nothing is written until Enable or EnableWriter is called.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out     io.Writer
	closer  io.Closer
	mu      sync.Mutex
	enabled bool

	counters = make(map[string]int)
)

// DefaultPath returns ~/.config/go-smf/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-smf", "debug.log")
}

// Enable starts logging to the file at path, or DefaultPath when empty. The
// file is truncated.
func Enable(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	start(f, f)
	return nil
}

// EnableWriter starts logging to w (stderr from the CLI, a buffer in tests).
func EnableWriter(w io.Writer) {
	start(w, nil)
}

func start(w io.Writer, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()

	stopLocked()
	out, closer, enabled = w, c, true
	counters = make(map[string]int)

	// Write directly (can't call Log - we hold the mutex)
	writeLocked("debug", "=== Debug logging started ===")
}

// Enabled reports whether Log currently writes anywhere.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Disable stops debug logging and closes the log file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	stopLocked()
}

func stopLocked() {
	if closer != nil {
		closer.Close()
	}
	out, closer, enabled = nil, nil, false
}

func writeLocked(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	writeLocked(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for per-event tracing)
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
