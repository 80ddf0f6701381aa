// SPDX-License-Identifier: MPL-2.0

package annotation

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// ScanLimit is the number of leading lines searched for an annotation.
	ScanLimit = 10

	// maxLineBytes caps a single scanned line; longer lines are a read error.
	maxLineBytes = 1 << 20
)

type (
	// Annotation is the (course, assignment) pair declared by a file.
	Annotation struct {
		Course     string
		Assignment string
	}

	// Parser reads annotations using a marker table.
	Parser struct {
		markers *Markers
		limit   int
	}
)

// String returns "course/assignment".
func (a Annotation) String() string {
	return a.Course + "/" + a.Assignment
}

// NewParser creates a parser for the given marker table.
func NewParser(markers *Markers) *Parser {
	return &Parser{markers: markers, limit: ScanLimit}
}

// Markers returns the parser's marker table.
func (p *Parser) Markers() *Markers {
	return p.markers
}

// Parse extracts the annotation declared by the file at path.
//
// The boolean result is false when the file has no usable annotation: its
// extension has no marker, no line within the scan limit starts with the
// marker, or the first marker line is malformed. None of those cases is an
// error. A non-nil error is returned only when the file cannot be opened or
// read; callers treat such files as unannotated.
func (p *Parser) Parse(path string) (Annotation, bool, error) {
	marker, ok := p.markers.Lookup(filepath.Ext(path))
	if !ok {
		return Annotation{}, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Annotation{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for n := 0; n < p.limit && scanner.Scan(); n++ {
		line := scanner.Text()
		if !strings.HasPrefix(line, marker) {
			continue
		}
		a, ok := ParseLine(line, marker)
		return a, ok, nil
	}
	if err := scanner.Err(); err != nil {
		return Annotation{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	return Annotation{}, false, nil
}

// ParseLine parses a single annotation line. The line must start with marker
// and split on whitespace into the marker, the course, and the assignment.
// Trailing ')' and whitespace are stripped from the assignment.
func ParseLine(line, marker string) (Annotation, bool) {
	if !strings.HasPrefix(line, marker) {
		return Annotation{}, false
	}
	tokens := splitFields(line, 3)
	if len(tokens) != 3 {
		return Annotation{}, false
	}
	assignment := strings.TrimRightFunc(tokens[2], func(r rune) bool {
		return r == ')' || unicode.IsSpace(r)
	})
	if assignment == "" {
		return Annotation{}, false
	}
	return Annotation{Course: tokens[1], Assignment: assignment}, true
}

// splitFields splits s around runs of whitespace into at most n tokens. The
// last token holds the unsplit remainder of the line.
func splitFields(s string, n int) []string {
	var tokens []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for rest != "" {
		if len(tokens) == n-1 {
			return append(tokens, rest)
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return append(tokens, rest)
		}
		tokens = append(tokens, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return tokens
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }
