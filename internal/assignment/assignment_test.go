// SPDX-License-Identifier: MPL-2.0

package assignment

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/autosubmit/autosubmit/internal/annotation"

	"github.com/google/go-cmp/cmp"
)

func entry(path, course, asg string) Entry {
	return Entry{Path: path, Annotation: annotation.Annotation{Course: course, Assignment: asg}, Present: true}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		entry("a.rkt", "CS100", "A1"),
		{Path: "d.txt"},
		entry("c.c", "CS100", "A2"),
		entry("b.rkt", "CS100", "A1"),
	}

	want := []Group{
		{Key: Key{"CS100", "A1"}, Files: []string{"a.rkt", "b.rkt"}},
		{Key: Key{"CS100", "A2"}, Files: []string{"c.c"}},
	}
	if diff := cmp.Diff(want, Collect(entries)); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_ExactKeys(t *testing.T) {
	t.Parallel()

	groups := Collect([]Entry{
		entry("a.rkt", "CS100", "A1"),
		entry("b.rkt", "cs100", "A1"),
		entry("c.rkt", "CS100 ", "A1"),
	})
	if len(groups) != 3 {
		t.Fatalf("expected 3 distinct groups, got %d: %+v", len(groups), groups)
	}
}

func TestCollect_Empty(t *testing.T) {
	t.Parallel()

	if groups := Collect(nil); len(groups) != 0 {
		t.Errorf("Collect(nil) = %+v, want empty", groups)
	}
	if groups := Collect([]Entry{{Path: "x.rkt"}}); len(groups) != 0 {
		t.Errorf("Collect(absent only) = %+v, want empty", groups)
	}
}

// membership reduces groups to key -> sorted files, ignoring order.
func membership(groups []Group) map[Key][]string {
	out := make(map[Key][]string, len(groups))
	for _, g := range groups {
		files := slices.Clone(g.Files)
		slices.Sort(files)
		out[g.Key] = files
	}
	return out
}

func TestCollect_OrderIndependentMembership(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		entry("a.rkt", "CS135", "A1"),
		entry("b.rkt", "CS135", "A1"),
		entry("c.c", "CS136", "A1"),
		entry("d.h", "CS136", "A1"),
		entry("e.rkt", "CS135", "A2"),
		{Path: "f.rkt"},
	}
	want := membership(Collect(entries))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 20 {
		shuffled := slices.Clone(entries)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		groups := Collect(shuffled)
		if diff := cmp.Diff(want, membership(groups)); diff != "" {
			t.Fatalf("shuffle %d: membership mismatch (-want +got):\n%s", i, diff)
		}
		// Collecting twice gives the same answer.
		if diff := cmp.Diff(groups, Collect(shuffled)); diff != "" {
			t.Fatalf("shuffle %d: Collect is not idempotent (-first +second):\n%s", i, diff)
		}
	}
}

func TestGrouper_SnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	g := NewGrouper()
	g.Add("a.rkt", annotation.Annotation{Course: "CS135", Assignment: "A1"})
	snapshot := g.Groups()

	g.Add("b.rkt", annotation.Annotation{Course: "CS135", Assignment: "A1"})
	g.Add("c.rkt", annotation.Annotation{Course: "CS135", Assignment: "A2"})

	if len(snapshot) != 1 || len(snapshot[0].Files) != 1 {
		t.Fatalf("snapshot changed after Add: %+v", snapshot)
	}
	snapshot[0].Files[0] = "mutated"
	if got := g.Groups()[0].Files[0]; got != "a.rkt" {
		t.Errorf("mutating a snapshot leaked into the grouper: %q", got)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestGroup_Payload(t *testing.T) {
	t.Parallel()

	single := Group{Key: Key{"CS100", "A2"}, Files: []string{"c.c"}}
	if !single.Single() {
		t.Error("one-file group should be single")
	}
	p := single.Payload()
	if !p.IsSingle() || p.Path() != "c.c" || p.Len() != 1 {
		t.Errorf("single payload = %+v", p)
	}
	if diff := cmp.Diff([]string{"c.c"}, p.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}

	multi := Group{Key: Key{"CS100", "A1"}, Files: []string{"a.rkt", "b.rkt"}}
	if multi.Single() {
		t.Error("two-file group should not be single")
	}
	p = multi.Payload()
	if p.IsSingle() || p.Path() != "" || p.Len() != 2 {
		t.Errorf("multi payload = %+v", p)
	}
	if diff := cmp.Diff([]string{"a.rkt", "b.rkt"}, p.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileList_OneElementStaysCollection(t *testing.T) {
	t.Parallel()

	p := FileList([]string{"only.rkt"})
	if p.IsSingle() {
		t.Error("FileList with one element must remain a collection")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	if got := (Key{Course: "CS135", Assignment: "A07"}).String(); got != "CS135/A07" {
		t.Errorf("String() = %q", got)
	}
}
