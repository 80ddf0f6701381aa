// SPDX-License-Identifier: MPL-2.0

package submit

import (
	"io"
	"strings"
	"sync"
)

type (
	// Reporter receives each result as soon as its group finishes. Report
	// may be called from several goroutines at once.
	Reporter interface {
		Report(Result)
	}

	// ReporterFunc adapts a function to the Reporter interface.
	ReporterFunc func(Result)

	// LineReporter writes one line per result. Each line is emitted with a
	// single Write under a mutex, so lines from concurrent groups never
	// interleave.
	LineReporter struct {
		mu     sync.Mutex
		w      io.Writer
		format func(Result) string
	}
)

// Report implements Reporter.
func (f ReporterFunc) Report(r Result) { f(r) }

// NewLineReporter creates a LineReporter. A nil format uses FormatLine.
func NewLineReporter(w io.Writer, format func(Result) string) *LineReporter {
	if format == nil {
		format = FormatLine
	}
	return &LineReporter{w: w, format: format}
}

// Report implements Reporter. Write errors are dropped; there is nowhere
// else to send them.
func (l *LineReporter) Report(r Result) {
	line := l.format(r)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, line)
}

// FormatLine renders "course/assignment: message".
func FormatLine(r Result) string {
	return r.Key.String() + ": " + r.Message()
}
