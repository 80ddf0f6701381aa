// SPDX-License-Identifier: MPL-2.0

// Package scan runs the local half of a submission run: it discovers
// candidate files, parses their annotations and groups them by assignment.
// Nothing here talks to the network; a Plan is complete before any
// submission starts.
package scan

import (
	"context"
	"log/slog"

	"github.com/autosubmit/autosubmit/internal/annotation"
	"github.com/autosubmit/autosubmit/internal/assignment"
	"github.com/autosubmit/autosubmit/internal/discovery"
)

type (
	// Plan is the immutable outcome of a scan.
	Plan struct {
		// Groups is the grouping snapshot, in first-seen key order.
		Groups []assignment.Group
		// Entries is every candidate with its parse result, in discovery order.
		Entries []assignment.Entry
		// Diagnostics collects non-fatal discovery and parse findings.
		Diagnostics []discovery.Diagnostic
	}

	// Scanner ties discovery, parsing and grouping together.
	Scanner struct {
		discovery *discovery.Discovery
		parser    *annotation.Parser
		logger    *slog.Logger
	}
)

// New creates a Scanner. A nil logger falls back to slog.Default().
func New(d *discovery.Discovery, p *annotation.Parser, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{discovery: d, parser: p, logger: logger}
}

// Scan discovers, parses and groups files. Only discovery failures (missing
// root, invalid options, cancellation) are returned as errors. A file that
// cannot be read is logged, recorded as a diagnostic and treated as having
// no annotation.
func (s *Scanner) Scan(ctx context.Context) (*Plan, error) {
	found, err := s.discovery.Discover(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Entries:     make([]assignment.Entry, 0, len(found.Candidates)),
		Diagnostics: found.Diagnostics,
	}
	for _, d := range found.Diagnostics {
		d.Log(s.logger)
	}

	grouper := assignment.NewGrouper()
	for _, c := range found.Candidates {
		a, ok, parseErr := s.parser.Parse(c.Path)
		if parseErr != nil {
			diag := discovery.Diagnostic{
				Severity: discovery.SeverityWarning,
				Code:     discovery.CodeFileUnreadable,
				Message:  "skipping unreadable file",
				Path:     c.Path,
				Cause:    parseErr,
			}
			diag.Log(s.logger)
			plan.Diagnostics = append(plan.Diagnostics, diag)
		}
		e := assignment.Entry{Path: c.Path, Annotation: a, Present: ok}
		plan.Entries = append(plan.Entries, e)
		if grouper.AddEntry(e) {
			s.logger.Debug("annotated file", "path", c.Path, "group", assignment.KeyOf(a).String())
		}
	}
	plan.Groups = grouper.Groups()

	s.logger.Debug("scan complete",
		"candidates", len(found.Candidates),
		"groups", len(plan.Groups),
		"diagnostics", len(plan.Diagnostics),
	)
	return plan, nil
}

// Annotated returns the number of entries that carry an annotation.
func (p *Plan) Annotated() int {
	n := 0
	for _, e := range p.Entries {
		if e.Present {
			n++
		}
	}
	return n
}
