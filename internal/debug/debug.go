// Package debug holds leadtime's diagnostic output switches. All output goes
// to stderr so that reports written to stdout stay machine readable.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	enabled     = os.Getenv("LEADTIME_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	outMu sync.Mutex
	out   io.Writer = os.Stderr
	start           = time.Now()
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetOutput redirects all diagnostic output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

func write(format string, args ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, format, args...)
}

// Logf prints debug output when --verbose or LEADTIME_DEBUG is set.
// Safe for concurrent use.
func Logf(format string, args ...interface{}) {
	if Enabled() {
		write(format, args...)
	}
}

// Tracef is Logf prefixed with the time elapsed since startup.
func Tracef(format string, args ...interface{}) {
	if Enabled() {
		write("[%7.3fs] "+format, append([]interface{}{time.Since(start).Seconds()}, args...)...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		write(format, args...)
	}
}

// Warnf prints a warning unless quiet mode is enabled.
func Warnf(format string, args ...interface{}) {
	if !quietMode {
		write("Warning: "+format, args...)
	}
}
