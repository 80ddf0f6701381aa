// SPDX-License-Identifier: MPL-2.0

// Package assignment groups annotated files into per-assignment submissions.
//
// Groups are keyed by the exact (course, assignment) string pair. Keys are not
// trimmed or case-folded, so "CS135" and "cs135" form two separate groups.
// Files keep discovery order within a group and groups keep the order in which
// their key was first seen.
package assignment

import (
	"slices"

	"github.com/autosubmit/autosubmit/internal/annotation"
)

type (
	// Key identifies an assignment group.
	Key struct {
		Course     string
		Assignment string
	}

	// Group is the set of files destined for one (course, assignment)
	// submission. A Group returned by Grouper.Groups owns its Files slice.
	Group struct {
		Key   Key
		Files []string
	}

	// Entry is a discovered file paired with its parse result.
	Entry struct {
		Path       string
		Annotation annotation.Annotation
		// Present is false when the file carries no usable annotation.
		Present bool
	}

	// Grouper accumulates annotated files. It is not safe for concurrent use;
	// hand the snapshot returned by Groups to concurrent consumers instead.
	Grouper struct {
		index  map[Key]int
		groups []Group
	}
)

// KeyOf returns the group key for an annotation.
func KeyOf(a annotation.Annotation) Key {
	return Key{Course: a.Course, Assignment: a.Assignment}
}

// String returns "course/assignment".
func (k Key) String() string {
	return k.Course + "/" + k.Assignment
}

// NewGrouper creates an empty Grouper.
func NewGrouper() *Grouper {
	return &Grouper{index: make(map[Key]int)}
}

// Add appends path to the group for a, creating the group on first sight.
func (g *Grouper) Add(path string, a annotation.Annotation) {
	key := KeyOf(a)
	if i, ok := g.index[key]; ok {
		g.groups[i].Files = append(g.groups[i].Files, path)
		return
	}
	g.index[key] = len(g.groups)
	g.groups = append(g.groups, Group{Key: key, Files: []string{path}})
}

// AddEntry adds e when it carries an annotation and reports whether it did.
func (g *Grouper) AddEntry(e Entry) bool {
	if !e.Present {
		return false
	}
	g.Add(e.Path, e.Annotation)
	return true
}

// Len returns the number of groups.
func (g *Grouper) Len() int {
	return len(g.groups)
}

// Groups returns a snapshot of the groups. The snapshot shares no memory with
// the Grouper, so later calls to Add never affect it.
func (g *Grouper) Groups() []Group {
	out := make([]Group, len(g.groups))
	for i, grp := range g.groups {
		out[i] = Group{Key: grp.Key, Files: slices.Clone(grp.Files)}
	}
	return out
}

// Collect groups entries in one pass, dropping entries without an annotation.
func Collect(entries []Entry) []Group {
	g := NewGrouper()
	for _, e := range entries {
		g.AddEntry(e)
	}
	return g.Groups()
}

// Single reports whether the group holds exactly one file. Single-file groups
// are submitted as a bare file rather than as a one-element collection.
func (grp Group) Single() bool {
	return len(grp.Files) == 1
}

// Payload returns the submission payload for the group: a bare path for a
// single-file group and a file list otherwise.
func (grp Group) Payload() Payload {
	if grp.Single() {
		return SingleFile(grp.Files[0])
	}
	return FileList(grp.Files)
}
