// SPDX-License-Identifier: MPL-2.0

package submit

import (
	"errors"
	"time"

	"github.com/autosubmit/autosubmit/internal/assignment"
)

const (
	// MessageSuccess is the terminal message for a successful group.
	MessageSuccess = "Success"
	// MessageFailure is the terminal message for any failed group.
	MessageFailure = "Submission failed (check credentials)"
)

const (
	// ReasonNone marks a successful result.
	ReasonNone FailureReason = ""
	// ReasonRejected means the service answered and refused the submission.
	ReasonRejected FailureReason = "service rejected"
	// ReasonTransport covers unreachable services, authentication failures
	// and credential retrieval errors.
	ReasonTransport FailureReason = "transport error"
)

// ErrRejected is wrapped by submitters when the service refuses a submission.
var ErrRejected = errors.New("submission rejected by service")

type (
	// FailureReason classifies a failed submission.
	FailureReason string

	// Result is the terminal outcome of one group.
	Result struct {
		Key    assignment.Key
		Files  int
		Reason FailureReason
		// Err is the underlying cause of a failure; nil on success.
		Err      error
		Duration time.Duration
	}
)

// Classify maps a submitter error to a failure reason.
func Classify(err error) FailureReason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrRejected):
		return ReasonRejected
	default:
		return ReasonTransport
	}
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool {
	return r.Reason == ReasonNone
}

// Message returns the user-visible terminal message. Rejections and
// transport errors read the same.
func (r Result) Message() string {
	if r.OK() {
		return MessageSuccess
	}
	return MessageFailure
}

// Summary counts successes and failures.
func Summary(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
