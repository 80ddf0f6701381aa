// SPDX-License-Identifier: MPL-2.0

package assignment

import "slices"

// Payload is what a submitter uploads for a group.
//
// The two shapes are deliberately distinct. A bare file is uploaded as-is,
// while a collection is packaged as an archive even when it holds a single
// element; the grading service lays out the two differently. Grouping produces
// a bare file for single-file groups and a collection for everything else.
type Payload struct {
	single string
	files  []string
	bare   bool
}

// SingleFile returns a payload that uploads path as a bare file.
func SingleFile(path string) Payload {
	return Payload{single: path, bare: true}
}

// FileList returns a payload that uploads paths as a collection.
func FileList(paths []string) Payload {
	return Payload{files: slices.Clone(paths)}
}

// IsSingle reports whether the payload is a bare file.
func (p Payload) IsSingle() bool {
	return p.bare
}

// Path returns the bare file path, or "" for a collection.
func (p Payload) Path() string {
	return p.single
}

// Paths returns every file in the payload. For a bare file this is a
// one-element slice.
func (p Payload) Paths() []string {
	if p.bare {
		return []string{p.single}
	}
	return slices.Clone(p.files)
}

// Len returns the number of files in the payload.
func (p Payload) Len() int {
	if p.bare {
		return 1
	}
	return len(p.files)
}
