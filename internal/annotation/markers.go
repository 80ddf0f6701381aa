// SPDX-License-Identifier: MPL-2.0

package annotation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MarkerRacket is the default marker for Racket sources.
	MarkerRacket = ";;;(autosubmit"
	// MarkerC is the default marker for C sources and headers.
	MarkerC = "//(autosubmit"
)

var (
	// ErrInvalidKeyword is the sentinel error wrapped by InvalidKeywordError.
	ErrInvalidKeyword = errors.New("invalid annotation keyword")
	// ErrDuplicateExtension is returned when two keywords claim the same extension.
	ErrDuplicateExtension = errors.New("duplicate annotation extension")
)

type (
	// Keyword binds a file extension (including the leading dot) to the
	// literal marker that must prefix an annotation line in such files.
	Keyword struct {
		Extension string
		Marker    string
	}

	// InvalidKeywordError is returned when a Keyword has an unusable extension
	// or an empty marker. It wraps ErrInvalidKeyword for errors.Is() compatibility.
	InvalidKeywordError struct {
		Keyword Keyword
		Reason  string
	}

	// Markers is an ordered, validated extension-to-marker table. The order of
	// extensions is the order in which keywords were supplied and determines
	// discovery order.
	Markers struct {
		order []string
		byExt map[string]string
	}
)

// DefaultKeywords returns the built-in keyword table.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Extension: ".rkt", Marker: MarkerRacket},
		{Extension: ".c", Marker: MarkerC},
		{Extension: ".h", Marker: MarkerC},
	}
}

// DefaultMarkers returns the built-in marker table.
func DefaultMarkers() *Markers {
	m, err := NewMarkers(DefaultKeywords())
	if err != nil {
		panic(err) // built-in table is always valid
	}
	return m
}

// NewMarkers validates keywords and builds a lookup table.
func NewMarkers(keywords []Keyword) (*Markers, error) {
	m := &Markers{
		order: make([]string, 0, len(keywords)),
		byExt: make(map[string]string, len(keywords)),
	}
	var errs []error
	for _, kw := range keywords {
		if err := kw.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, exists := m.byExt[kw.Extension]; exists {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateExtension, kw.Extension))
			continue
		}
		m.order = append(m.order, kw.Extension)
		m.byExt[kw.Extension] = kw.Marker
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Validate reports whether the keyword can be used for lookups.
func (k Keyword) Validate() error {
	switch {
	case k.Extension == "":
		return &InvalidKeywordError{Keyword: k, Reason: "extension is empty"}
	case !strings.HasPrefix(k.Extension, "."):
		return &InvalidKeywordError{Keyword: k, Reason: "extension must start with '.'"}
	case len(k.Extension) == 1:
		return &InvalidKeywordError{Keyword: k, Reason: "extension has no name after '.'"}
	case strings.Count(k.Extension, ".") > 1:
		return &InvalidKeywordError{Keyword: k, Reason: "extension must contain a single '.'"}
	case strings.ContainsAny(k.Extension, `/\`) || strings.ContainsFunc(k.Extension, isSpace):
		return &InvalidKeywordError{Keyword: k, Reason: "extension contains a path separator or whitespace"}
	case strings.TrimSpace(k.Marker) == "":
		return &InvalidKeywordError{Keyword: k, Reason: "marker is empty"}
	case strings.ContainsFunc(k.Marker, isSpace):
		return &InvalidKeywordError{Keyword: k, Reason: "marker contains whitespace"}
	}
	return nil
}

// Error implements the error interface for InvalidKeywordError.
func (e *InvalidKeywordError) Error() string {
	return fmt.Sprintf("invalid annotation keyword %q -> %q: %s", e.Keyword.Extension, e.Keyword.Marker, e.Reason)
}

// Unwrap returns ErrInvalidKeyword for errors.Is() compatibility.
func (e *InvalidKeywordError) Unwrap() error { return ErrInvalidKeyword }

// Lookup returns the marker configured for ext. The match is exact: ".C" and
// ".c" are different extensions.
func (m *Markers) Lookup(ext string) (string, bool) {
	if m == nil {
		return "", false
	}
	marker, ok := m.byExt[ext]
	return marker, ok
}

// Extensions returns the configured extensions in declaration order.
func (m *Markers) Extensions() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Keywords returns the table as keywords in declaration order.
func (m *Markers) Keywords() []Keyword {
	if m == nil {
		return nil
	}
	out := make([]Keyword, 0, len(m.order))
	for _, ext := range m.order {
		out = append(out, Keyword{Extension: ext, Marker: m.byExt[ext]})
	}
	return out
}
