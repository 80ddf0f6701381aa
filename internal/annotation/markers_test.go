// SPDX-License-Identifier: MPL-2.0

package annotation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultMarkers(t *testing.T) {
	t.Parallel()

	m := DefaultMarkers()
	if diff := cmp.Diff([]string{".rkt", ".c", ".h"}, m.Extensions()); diff != "" {
		t.Errorf("Extensions() mismatch (-want +got):\n%s", diff)
	}
	if marker, ok := m.Lookup(".rkt"); !ok || marker != MarkerRacket {
		t.Errorf("Lookup(.rkt) = %q, %v", marker, ok)
	}
	if _, ok := m.Lookup(".txt"); ok {
		t.Error("Lookup(.txt) should miss")
	}
	if _, ok := m.Lookup("rkt"); ok {
		t.Error("Lookup without leading dot should miss")
	}
}

func TestNewMarkers_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keyword Keyword
	}{
		{name: "empty extension", keyword: Keyword{Extension: "", Marker: "#"}},
		{name: "missing dot", keyword: Keyword{Extension: "rkt", Marker: MarkerRacket}},
		{name: "dot only", keyword: Keyword{Extension: ".", Marker: MarkerRacket}},
		{name: "path separator", keyword: Keyword{Extension: "./x", Marker: MarkerRacket}},
		{name: "double extension", keyword: Keyword{Extension: ".tar.gz", Marker: "#"}},
		{name: "empty marker", keyword: Keyword{Extension: ".py", Marker: "  "}},
		{name: "marker with space", keyword: Keyword{Extension: ".py", Marker: "# autosubmit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewMarkers([]Keyword{tt.keyword})
			if err == nil {
				t.Fatal("NewMarkers() should fail")
			}
			if !errors.Is(err, ErrInvalidKeyword) {
				t.Errorf("error should wrap ErrInvalidKeyword, got: %v", err)
			}
			var kwErr *InvalidKeywordError
			if !errors.As(err, &kwErr) {
				t.Fatalf("error should be *InvalidKeywordError, got: %T", err)
			}
			if kwErr.Keyword != tt.keyword {
				t.Errorf("Keyword = %+v, want %+v", kwErr.Keyword, tt.keyword)
			}
		})
	}
}

func TestNewMarkers_DuplicateExtension(t *testing.T) {
	t.Parallel()

	_, err := NewMarkers([]Keyword{
		{Extension: ".c", Marker: MarkerC},
		{Extension: ".c", Marker: "/*(autosubmit"},
	})
	if !errors.Is(err, ErrDuplicateExtension) {
		t.Fatalf("expected ErrDuplicateExtension, got: %v", err)
	}
}

func TestMarkers_KeywordsRoundTrip(t *testing.T) {
	t.Parallel()

	in := []Keyword{
		{Extension: ".py", Marker: "#(autosubmit"},
		{Extension: ".rkt", Marker: MarkerRacket},
	}
	m, err := NewMarkers(in)
	if err != nil {
		t.Fatalf("NewMarkers() error: %v", err)
	}
	if diff := cmp.Diff(in, m.Keywords()); diff != "" {
		t.Errorf("Keywords() mismatch (-want +got):\n%s", diff)
	}
}
