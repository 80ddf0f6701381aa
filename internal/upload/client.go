// SPDX-License-Identifier: MPL-2.0

// Package upload is the HTTP submitter for the grading service.
//
// A submission is a multipart POST to
// {base}/courses/{course}/assignments/{assignment}/submissions authenticated
// with HTTP basic auth. Single-file groups upload the file itself; larger
// groups upload a zip archive named submission.zip.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/autosubmit/autosubmit/internal/assignment"
	"github.com/autosubmit/autosubmit/internal/credentials"
	"github.com/autosubmit/autosubmit/internal/submit"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds one submission request.
	DefaultTimeout = 60 * time.Second
	// ArchiveName is the upload name of multi-file submissions.
	ArchiveName = "submission.zip"

	// RequestIDHeader carries a fresh UUID on every submission request.
	RequestIDHeader = "X-Request-Id"

	formField    = "file"
	maxErrorBody = 4 << 10
)

var (
	// ErrInvalidURL is returned for base URLs that are not absolute http(s).
	ErrInvalidURL = errors.New("invalid service URL")
	// ErrUnauthorized is wrapped for 401 and 403 responses.
	ErrUnauthorized = errors.New("authentication failed")
)

type (
	// Client submits payloads over HTTP. It implements submit.Submitter.
	Client struct {
		base      *url.URL
		http      *http.Client
		userAgent string
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)

	// StatusError is returned for non-2xx responses. Rejections wrap
	// submit.ErrRejected, authentication failures wrap ErrUnauthorized.
	StatusError struct {
		StatusCode int
		Body       string
		// RequestID is the X-Request-Id sent with the failed request.
		RequestID string
		kind      error
	}
)

var _ submit.Submitter = (*Client)(nil)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// ParseBaseURL validates a service base URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http or https URL", ErrInvalidURL, raw)
	}
	return u, nil
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "autosubmit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the submission URL for a course and assignment.
func (c *Client) Endpoint(course, asg string) string {
	return strings.TrimSuffix(c.base.String(), "/") +
		"/courses/" + url.PathEscape(course) +
		"/assignments/" + url.PathEscape(asg) +
		"/submissions"
}

// Submit implements submit.Submitter.
func (c *Client) Submit(ctx context.Context, creds credentials.Credentials, course, asg string, payload assignment.Payload) error {
	if !payload.IsSingle() {
		// Fail before opening the connection; WriteArchive checks again.
		if err := checkNames(payload.Paths()); err != nil {
			return err
		}
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeBody(mw, payload))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(course, asg), pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.SetBasicAuth(creds.Username, creds.Password.Reveal())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit %s/%s: %w", course, asg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := newStatusError(resp.StatusCode, body)
	se.RequestID = requestID
	return se
}

func writeBody(mw *multipart.Writer, payload assignment.Payload) error {
	if payload.IsSingle() {
		if err := writeFilePart(mw, payload.Path()); err != nil {
			return err
		}
		return mw.Close()
	}
	part, err := mw.CreateFormFile(formField, ArchiveName)
	if err != nil {
		return err
	}
	if err := WriteArchive(part, payload.Paths()); err != nil {
		return err
	}
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	part, err := mw.CreateFormFile(formField, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func checkNames(paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func newStatusError(code int, body []byte) *StatusError {
	e := &StatusError{StatusCode: code, Body: strings.TrimSpace(string(body))}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		e.kind = ErrUnauthorized
	case code >= 400 && code < 500:
		e.kind = submit.ErrRejected
	}
	return e
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("service returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap returns submit.ErrRejected, ErrUnauthorized or nil.
func (e *StatusError) Unwrap() error { return e.kind }
