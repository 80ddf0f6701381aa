// SPDX-License-Identifier: MPL-2.0

package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/autosubmit/autosubmit/internal/assignment"
	"github.com/autosubmit/autosubmit/internal/credentials"

	"github.com/google/go-cmp/cmp"
)

var testCreds = credentials.Static{Username: "jdoe", Password: "pw"}

type call struct {
	Course, Assignment string
	Single             bool
	Paths              []string
}

// recorder is a Submitter that records calls and fails the keys it is told to.
type recorder struct {
	mu     sync.Mutex
	calls  []call
	errFor map[string]error
}

func (r *recorder) Submit(_ context.Context, creds credentials.Credentials, course, asg string, p assignment.Payload) error {
	if creds.Username != "jdoe" {
		return errors.New("wrong credentials passed")
	}
	r.mu.Lock()
	r.calls = append(r.calls, call{Course: course, Assignment: asg, Single: p.IsSingle(), Paths: p.Paths()})
	r.mu.Unlock()
	return r.errFor[course+"/"+asg]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func groups() []assignment.Group {
	return []assignment.Group{
		{Key: assignment.Key{Course: "CS100", Assignment: "A1"}, Files: []string{"a.rkt", "b.rkt"}},
		{Key: assignment.Key{Course: "CS100", Assignment: "A2"}, Files: []string{"c.c"}},
	}
}

func TestSubmitAll_FailureIsolation(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()

			rec := &recorder{errFor: map[string]error{
				"CS100/A1": fmt.Errorf("HTTP 400: %w", ErrRejected),
			}}
			var out bytes.Buffer
			o := New(rec, testCreds,
				WithMode(mode),
				WithReporter(NewLineReporter(&out, nil)),
				WithLogger(quietLogger()))

			results := o.SubmitAll(context.Background(), groups())

			if len(results) != 2 {
				t.Fatalf("got %d results, want 2", len(results))
			}
			if results[0].Reason != ReasonRejected || results[0].Message() != MessageFailure {
				t.Errorf("result[0] = %+v", results[0])
			}
			if !results[1].OK() || results[1].Message() != MessageSuccess {
				t.Errorf("result[1] = %+v", results[1])
			}
			if results[0].Files != 2 || results[1].Files != 1 {
				t.Errorf("file counts = %d, %d", results[0].Files, results[1].Files)
			}

			lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			if len(lines) != 2 {
				t.Fatalf("reported lines = %q", out.String())
			}
			for _, want := range []string{
				"CS100/A1: Submission failed (check credentials)",
				"CS100/A2: Success",
			} {
				if !strings.Contains(out.String(), want+"\n") {
					t.Errorf("missing line %q in %q", want, out.String())
				}
			}
		})
	}
}

func TestSubmitAll_PayloadShapes(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	o := New(rec, testCreds, WithMode(ModeSequential), WithLogger(quietLogger()))
	o.SubmitAll(context.Background(), groups())

	want := []call{
		{Course: "CS100", Assignment: "A1", Single: false, Paths: []string{"a.rkt", "b.rkt"}},
		{Course: "CS100", Assignment: "A2", Single: true, Paths: []string{"c.c"}},
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitAll_NoGroupsNoCredentials(t *testing.T) {
	t.Parallel()

	provider := credentials.ProviderFunc(func(context.Context) (credentials.Credentials, error) {
		t.Error("credentials must not be requested when there is nothing to submit")
		return credentials.Credentials{}, nil
	})
	sub := SubmitterFunc(func(context.Context, credentials.Credentials, string, string, assignment.Payload) error {
		t.Error("submitter must not be called")
		return nil
	})

	if got := New(sub, provider).SubmitAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %+v", got)
	}
}

func TestSubmitAll_CredentialFailureFailsEveryGroup(t *testing.T) {
	t.Parallel()

	provider := credentials.ProviderFunc(func(context.Context) (credentials.Credentials, error) {
		return credentials.Credentials{}, credentials.ErrCanceled
	})
	var calls atomic.Int32
	sub := SubmitterFunc(func(context.Context, credentials.Credentials, string, string, assignment.Payload) error {
		calls.Add(1)
		return nil
	})
	var reported atomic.Int32
	o := New(sub, provider,
		WithReporter(ReporterFunc(func(Result) { reported.Add(1) })),
		WithLogger(quietLogger()))

	results := o.SubmitAll(context.Background(), groups())

	if calls.Load() != 0 {
		t.Errorf("submitter called %d times without credentials", calls.Load())
	}
	if reported.Load() != 2 {
		t.Errorf("reported %d results, want 2", reported.Load())
	}
	for _, r := range results {
		if r.Reason != ReasonTransport || !errors.Is(r.Err, credentials.ErrCanceled) {
			t.Errorf("result = %+v", r)
		}
	}
}

func TestSubmitAll_OneCallPerGroup(t *testing.T) {
	t.Parallel()

	var gs []assignment.Group
	for i := range 20 {
		gs = append(gs, assignment.Group{
			Key:   assignment.Key{Course: "CS100", Assignment: fmt.Sprintf("A%02d", i)},
			Files: []string{"x.rkt", "y.rkt", "z.rkt"},
		})
	}
	rec := &recorder{}
	New(rec, testCreds, WithLogger(quietLogger())).SubmitAll(context.Background(), gs)

	if len(rec.calls) != len(gs) {
		t.Fatalf("got %d calls for %d groups", len(rec.calls), len(gs))
	}
	seen := map[string]int{}
	for _, c := range rec.calls {
		seen[c.Assignment]++
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("%s submitted %d times", k, n)
		}
	}
}

func TestSubmitAll_ConcurrentDoesNotWaitForPriorGroups(t *testing.T) {
	t.Parallel()

	// The first group blocks until the second has been submitted; a
	// sequential dispatch would deadlock here.
	second := make(chan struct{})
	sub := SubmitterFunc(func(ctx context.Context, _ credentials.Credentials, _, asg string, _ assignment.Payload) error {
		if asg == "A1" {
			select {
			case <-second:
				return nil
			case <-time.After(5 * time.Second):
				return errors.New("timed out waiting for A2")
			}
		}
		close(second)
		return nil
	})

	results := New(sub, testCreds, WithMode(ModeConcurrent), WithLogger(quietLogger())).
		SubmitAll(context.Background(), groups())
	for _, r := range results {
		if !r.OK() {
			t.Errorf("%s: %v", r.Key, r.Err)
		}
	}
}

func TestSubmitAll_MaxConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	sub := SubmitterFunc(func(context.Context, credentials.Credentials, string, string, assignment.Payload) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	var gs []assignment.Group
	for i := range 10 {
		gs = append(gs, assignment.Group{Key: assignment.Key{Course: "C", Assignment: fmt.Sprint(i)}, Files: []string{"f.c"}})
	}
	New(sub, testCreds, WithMaxConcurrency(2), WithLogger(quietLogger())).SubmitAll(context.Background(), gs)

	if peak.Load() > 2 {
		t.Errorf("peak in-flight = %d, want <= 2", peak.Load())
	}
}

func TestSubmitAll_PanicIsIsolated(t *testing.T) {
	t.Parallel()

	sub := SubmitterFunc(func(_ context.Context, _ credentials.Credentials, _, asg string, _ assignment.Payload) error {
		if asg == "A1" {
			panic("boom")
		}
		return nil
	})
	results := New(sub, testCreds, WithLogger(quietLogger())).SubmitAll(context.Background(), groups())
	if results[0].Reason != ReasonTransport {
		t.Errorf("panicking group = %+v", results[0])
	}
	if !results[1].OK() {
		t.Errorf("other group = %+v", results[1])
	}
}

func TestLineReporter_LinesAreAtomic(t *testing.T) {
	t.Parallel()

	w := &countingWriter{}
	r := NewLineReporter(w, func(res Result) string {
		return strings.Repeat(res.Key.Assignment, 64)
	})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			r.Report(Result{Key: assignment.Key{Course: "C", Assignment: string(rune('a' + i%26))}})
		})
	}
	wg.Wait()

	if w.writes != 50 {
		t.Errorf("writes = %d, want one per line", w.writes)
	}
	for _, line := range strings.Split(strings.TrimSuffix(w.buf.String(), "\n"), "\n") {
		if len(line) != 64 || strings.Count(line, line[:1]) != 64 {
			t.Errorf("interleaved line %q", line)
		}
	}
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes++
	return c.buf.Write(p)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want FailureReason
	}{
		{nil, ReasonNone},
		{ErrRejected, ReasonRejected},
		{fmt.Errorf("status 422: %w", ErrRejected), ReasonRejected},
		{errors.New("connection refused"), ReasonTransport},
		{context.DeadlineExceeded, ReasonTransport},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeConcurrent, false},
		{"sequential", ModeSequential, false},
		{"Concurrent", ModeConcurrent, false},
		{" sequential ", ModeSequential, false},
		{"parallel", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			var modeErr *InvalidModeError
			if !errors.As(err, &modeErr) || !errors.Is(err, ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}

	if err := Mode("").Validate(); err == nil {
		t.Error("empty mode should not validate")
	}
	if err := ModeSequential.Validate(); err != nil {
		t.Errorf("ModeSequential.Validate() = %v", err)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	ok, failed := Summary([]Result{{}, {Reason: ReasonRejected}, {Reason: ReasonTransport}, {}})
	if ok != 2 || failed != 2 {
		t.Errorf("Summary() = %d, %d", ok, failed)
	}
}
