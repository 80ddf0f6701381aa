// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/autosubmit/autosubmit/internal/annotation"
	"github.com/autosubmit/autosubmit/internal/assignment"
	"github.com/autosubmit/autosubmit/internal/discovery"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newScanner(root string, opts ...discovery.Option) *Scanner {
	markers := annotation.DefaultMarkers()
	opts = append([]discovery.Option{
		discovery.WithRoot(root),
		discovery.WithExtensions(markers.Extensions()...),
	}, opts...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(discovery.New(opts...), annotation.NewParser(markers), logger)
}

func TestScan_EndToEndGrouping(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.rkt", ";;;(autosubmit CS100 A1)\n(define a 1)\n")
	writeFile(t, root, "b.rkt", ";;;(autosubmit CS100 A1)\n(define b 2)\n")
	writeFile(t, root, "c.c", "//(autosubmit CS100 A2)\nint main(void) { return 0; }\n")
	writeFile(t, root, "d.txt", ";;;(autosubmit CS100 A1)\n")

	plan, err := newScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	want := []assignment.Group{
		{Key: assignment.Key{Course: "CS100", Assignment: "A1"}, Files: []string{filepath.Join(root, "a.rkt"), filepath.Join(root, "b.rkt")}},
		{Key: assignment.Key{Course: "CS100", Assignment: "A2"}, Files: []string{filepath.Join(root, "c.c")}},
	}
	if diff := cmp.Diff(want, plan.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if plan.Groups[0].Single() {
		t.Error("CS100/A1 should be a multi-file group")
	}
	if !plan.Groups[1].Single() {
		t.Error("CS100/A2 should be a single-file group")
	}
	if len(plan.Entries) != 3 {
		t.Errorf("d.txt must never become a candidate, entries = %+v", plan.Entries)
	}
	if plan.Annotated() != 3 {
		t.Errorf("Annotated() = %d, want 3", plan.Annotated())
	}
}

func TestScan_EmptyDirectory(t *testing.T) {
	t.Parallel()

	plan, err := newScanner(t.TempDir()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(plan.Groups) != 0 || len(plan.Entries) != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestScan_UnannotatedFilesAreEntriesButNotGrouped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "helper.rkt", "(define (helper) 1)\n")
	writeFile(t, root, "main.rkt", ";;;(autosubmit CS135 A01)\n")

	plan, err := newScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(plan.Entries) != 2 || plan.Annotated() != 1 {
		t.Errorf("entries = %+v", plan.Entries)
	}
	if len(plan.Groups) != 1 || !plan.Groups[0].Single() {
		t.Errorf("groups = %+v", plan.Groups)
	}
}

func TestScan_UnreadableFileIsNotFatal(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user/platform")
	}

	root := t.TempDir()
	writeFile(t, root, "ok.rkt", ";;;(autosubmit CS135 A01)\n")
	writeFile(t, root, "secret.rkt", ";;;(autosubmit CS135 A01)\n")
	if err := os.Chmod(filepath.Join(root, "secret.rkt"), 0o000); err != nil {
		t.Fatal(err)
	}

	plan, err := newScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(plan.Groups) != 1 || len(plan.Groups[0].Files) != 1 {
		t.Fatalf("groups = %+v", plan.Groups)
	}
	var found bool
	for _, d := range plan.Diagnostics {
		if d.Code == discovery.CodeFileUnreadable && d.Path == filepath.Join(root, "secret.rkt") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s diagnostic, got %+v", discovery.CodeFileUnreadable, plan.Diagnostics)
	}
}

func TestScan_MissingRootIsFatal(t *testing.T) {
	t.Parallel()

	_, err := newScanner(filepath.Join(t.TempDir(), "nope")).Scan(context.Background())
	if !errors.Is(err, discovery.ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}
