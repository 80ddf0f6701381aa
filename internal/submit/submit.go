// SPDX-License-Identifier: MPL-2.0

// Package submit drives the submission of assignment groups to the grading
// service.
//
// Each group is one task. Tasks either run one after another or are all
// dispatched at once; in both cases a failed group never stops the others,
// and every group ends with exactly one reported Result. Credentials are
// resolved once per run, and only when there is something to submit.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autosubmit/autosubmit/internal/assignment"
	"github.com/autosubmit/autosubmit/internal/credentials"

	"golang.org/x/sync/errgroup"
)

type (
	// Submitter uploads one group's payload. A nil error is success; an error
	// wrapping ErrRejected is a service rejection; anything else is a
	// transport error.
	Submitter interface {
		Submit(ctx context.Context, creds credentials.Credentials, course, assignment string, payload assignment.Payload) error
	}

	// SubmitterFunc adapts a function to the Submitter interface.
	SubmitterFunc func(ctx context.Context, creds credentials.Credentials, course, assignment string, payload assignment.Payload) error

	// Option configures an Orchestrator.
	Option func(*Orchestrator)

	// Orchestrator submits groups and reports their outcomes.
	Orchestrator struct {
		submitter      Submitter
		credentials    credentials.Provider
		mode           Mode
		maxConcurrency int
		reporter       Reporter
		logger         *slog.Logger
		now            func() time.Time
	}
)

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, creds credentials.Credentials, course, assignment string, payload assignment.Payload) error {
	return f(ctx, creds, course, assignment, payload)
}

// WithMode sets the dispatch policy.
func WithMode(m Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithMaxConcurrency bounds in-flight submissions in concurrent mode.
// Zero or a negative value means one goroutine per group.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) { o.maxConcurrency = n }
}

// WithReporter sets the sink that receives each result as it completes.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator. The default mode is concurrent with no limit
// and results are not reported anywhere until WithReporter is given.
func New(s Submitter, p credentials.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		submitter:   s,
		credentials: p,
		mode:        DefaultMode,
		reporter:    ReporterFunc(func(Result) {}),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mode returns the configured dispatch policy.
func (o *Orchestrator) Mode() Mode { return o.mode }

// SubmitAll submits every group and returns one Result per group, in group
// order. Each result is also passed to the reporter as soon as its group
// finishes, which in concurrent mode is completion order.
//
// No error is returned: every failure, including a failure to obtain
// credentials, is expressed as a failed Result.
func (o *Orchestrator) SubmitAll(ctx context.Context, groups []assignment.Group) []Result {
	if len(groups) == 0 {
		return nil
	}

	creds, err := o.credentials.Credentials(ctx)
	if err != nil {
		o.logger.Warn("credentials unavailable, failing all groups", "groups", len(groups), "error", err)
		results := make([]Result, len(groups))
		for i, grp := range groups {
			results[i] = Result{Key: grp.Key, Files: len(grp.Files), Reason: ReasonTransport, Err: fmt.Errorf("credentials: %w", err)}
			o.reporter.Report(results[i])
		}
		return results
	}

	o.logger.Debug("submitting", "groups", len(groups), "mode", o.mode, "user", creds)

	results := make([]Result, len(groups))
	if o.mode == ModeSequential {
		for i, grp := range groups {
			results[i] = o.submitGroup(ctx, creds, grp)
		}
		return results
	}

	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}
	for i, grp := range groups {
		g.Go(func() error {
			results[i] = o.submitGroup(ctx, creds, grp)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) submitGroup(ctx context.Context, creds credentials.Credentials, grp assignment.Group) Result {
	start := o.now()
	err := o.call(ctx, creds, grp)
	res := Result{
		Key:      grp.Key,
		Files:    len(grp.Files),
		Reason:   Classify(err),
		Err:      err,
		Duration: o.now().Sub(start),
	}

	if err != nil {
		o.logger.Warn("submission failed", "group", grp.Key.String(), "reason", string(res.Reason), "error", err)
	} else {
		o.logger.Debug("submitted", "group", grp.Key.String(), "files", res.Files, "duration", res.Duration)
	}
	o.reporter.Report(res)
	return res
}

// call isolates a panicking submitter to its own group.
func (o *Orchestrator) call(ctx context.Context, creds credentials.Credentials, grp assignment.Group) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submitter panic: %v", r)
		}
	}()
	return o.submitter.Submit(ctx, creds, grp.Key.Course, grp.Key.Assignment, grp.Payload())
}
