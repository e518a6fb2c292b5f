// Package semalog provides the ambient structured logging threaded
// through internal/pipeline: one named sub-logger per phase, emitting
// entry/exit/error events at levels a downstream operator can filter
// on. The teacher has no logging of its own (a pure compiler pass with
// no ambient concerns beyond diagnostics); this is enriched from the
// rest of the retrieved pack's confirmed hclog usage.
package semalog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the shared entry point; callers get a per-phase child via
// Named so every log line carries which phase produced it.
type Logger = hclog.Logger

// New creates the root logger for a pipeline run. level comes from the
// caller (CLI flag, config file, or a test default).
func New(level hclog.Level) Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            "sema",
		Level:           level,
		Output:          os.Stderr,
		IncludeLocation: false,
	})
}

// Noop returns a logger that discards everything, for callers (tests,
// library consumers that don't want output) that don't want the
// pipeline's ambient logging at all.
func Noop() Logger {
	return hclog.NewNullLogger()
}

// PhaseStart logs entry into a named phase for a given declaration FQN.
func PhaseStart(l Logger, phase, fqn string) {
	l.Named(phase).Debug("starting", "decl", fqn)
}

// PhaseDone logs phase completion, including how many diagnostics it
// produced.
func PhaseDone(l Logger, phase, fqn string, errCount int) {
	sub := l.Named(phase)
	if errCount > 0 {
		sub.Warn("finished with errors", "decl", fqn, "errors", errCount)
		return
	}
	sub.Debug("finished", "decl", fqn)
}
