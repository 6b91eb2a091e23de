// Package ui holds phpp's plain stdout/stderr progress and diagnostic
// output helpers, in the same unadorned style the teacher uses for its
// own logf/vlogf: no structured logging library, just fmt over an
// injectable writer and a verbosity flag.
package ui

import (
	"fmt"
	"io"
	"os"
)

// Streams bundles the writers progress and diagnostic output go to, so
// tests can capture both without touching os.Stdout/os.Stderr.
type Streams struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool
}

// Default returns a Streams wired to the process's real stdout/stderr.
func Default() *Streams {
	return &Streams{Out: os.Stdout, Err: os.Stderr}
}

// Progress prints a progress line to Out, e.g. "  - Locking foo/bar(1.2.3)".
// The leading two-space indent and dash match the registry tool's own
// output, which some CI scripts grep for.
func (s *Streams) Progress(format string, args ...interface{}) {
	fmt.Fprintf(s.Out, "  - "+format+"\n", args...)
}

// Logf prints a diagnostic line to Err, unconditionally.
func (s *Streams) Logf(format string, args ...interface{}) {
	fmt.Fprintf(s.Err, "phpp: "+format+"\n", args...)
}

// Vlogf prints a diagnostic line to Err only when Verbose is set.
func (s *Streams) Vlogf(format string, args ...interface{}) {
	if !s.Verbose {
		return
	}
	s.Logf(format, args...)
}
