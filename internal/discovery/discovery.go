// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxDepth is the recursion bound used when none is configured.
const DefaultMaxDepth = 2

var (
	// ErrRootNotFound is returned when the discovery root does not exist.
	ErrRootNotFound = errors.New("discovery root not found")
	// ErrRootNotDir is returned when the discovery root is not a directory.
	ErrRootNotDir = errors.New("discovery root is not a directory")
	// ErrInvalidOptions is the sentinel error wrapped by InvalidOptionsError.
	ErrInvalidOptions = errors.New("invalid discovery options")
)

// defaultExcludes are skipped unless the caller replaces them.
var defaultExcludes = []string{"**/.git", "**/node_modules"}

type (
	// Option configures a Discovery.
	Option func(*Discovery)

	// Discovery finds candidate files for annotation parsing.
	Discovery struct {
		root       string
		extensions []string
		maxDepth   int
		recursive  bool
		excludes   []string
	}

	// Candidate is a file whose name ends with one of the configured extensions.
	Candidate struct {
		// Path is the file path joined onto the root as given by the caller.
		Path string
		// Extension is the configured extension the file matched.
		Extension string
		// Depth is the depth of the directory holding the file (root = 0).
		Depth int
	}

	// Result bundles discovered candidates with diagnostics produced during the
	// walk. Diagnostics are non-fatal and should be rendered by the caller.
	Result struct {
		Candidates  []Candidate
		Diagnostics []Diagnostic
	}

	// InvalidOptionsError is returned when Discovery options cannot be used.
	// It wraps ErrInvalidOptions for errors.Is() compatibility.
	InvalidOptionsError struct {
		FieldErrors []error
	}
)

// WithRoot sets the directory to scan (default ".").
func WithRoot(root string) Option {
	return func(d *Discovery) { d.root = root }
}

// WithExtensions sets the file extensions to match, including the leading dot.
func WithExtensions(exts ...string) Option {
	return func(d *Discovery) { d.extensions = slices.Clone(exts) }
}

// WithMaxDepth sets the recursion bound for recursive discovery.
func WithMaxDepth(depth int) Option {
	return func(d *Discovery) { d.maxDepth = depth }
}

// WithRecursive toggles recursive discovery. When false only the root
// directory itself is listed.
func WithRecursive(recursive bool) Option {
	return func(d *Discovery) { d.recursive = recursive }
}

// WithExcludes replaces the default exclude patterns. Patterns are doublestar
// globs matched against slash-separated paths relative to the root.
func WithExcludes(patterns ...string) Option {
	return func(d *Discovery) { d.excludes = slices.Clone(patterns) }
}

// New creates a Discovery. Defaults: root ".", recursive, depth
// DefaultMaxDepth, the built-in excludes and no extensions.
func New(opts ...Option) *Discovery {
	d := &Discovery{
		root:      ".",
		maxDepth:  DefaultMaxDepth,
		recursive: true,
		excludes:  DefaultExcludes(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultExcludes returns a copy of the built-in exclude patterns.
func DefaultExcludes() []string {
	return slices.Clone(defaultExcludes)
}

// Validate checks the options for values the walk cannot honor.
func (d *Discovery) Validate() error {
	var errs []error
	if strings.TrimSpace(d.root) == "" {
		errs = append(errs, errors.New("root is empty"))
	}
	if d.maxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth %d is negative", d.maxDepth))
	}
	for _, ext := range d.extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("extension %q must start with '.' followed by a name", ext))
		}
	}
	for _, pat := range d.excludes {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("exclude pattern %q is not a valid glob", pat))
		}
	}
	if len(errs) > 0 {
		return &InvalidOptionsError{FieldErrors: errs}
	}
	return nil
}

// EffectiveMaxDepth is the deepest directory level that will be read.
func (d *Discovery) EffectiveMaxDepth() int {
	if !d.recursive {
		return 0
	}
	return d.maxDepth
}

// Error implements the error interface for InvalidOptionsError.
func (e *InvalidOptionsError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid discovery options: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid discovery options: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidOptions for errors.Is() compatibility.
func (e *InvalidOptionsError) Unwrap() error { return ErrInvalidOptions }

// Paths returns the candidate paths in discovery order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Path
	}
	return out
}
