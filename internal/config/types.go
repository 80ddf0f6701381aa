// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/autosubmit/autosubmit/internal/annotation"
	"github.com/autosubmit/autosubmit/internal/discovery"
	"github.com/autosubmit/autosubmit/internal/submit"
	"github.com/autosubmit/autosubmit/internal/upload"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = upload.DefaultTimeout

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidScanConfig is the sentinel error wrapped by InvalidScanConfigError.
	ErrInvalidScanConfig = errors.New("invalid scan config")
	// ErrInvalidSubmitConfig is the sentinel error wrapped by InvalidSubmitConfigError.
	ErrInvalidSubmitConfig = errors.New("invalid submit config")
	// ErrInvalidServiceConfig is the sentinel error wrapped by InvalidServiceConfigError.
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

type (
	// MarkerEntry maps one file extension to its annotation marker.
	MarkerEntry struct {
		Extension string `json:"extension" mapstructure:"extension"`
		Marker    string `json:"marker" mapstructure:"marker"`
	}

	// ScanConfig controls file discovery.
	ScanConfig struct {
		// MaxDepth bounds recursion; the root directory is depth 0.
		MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
		// Recursive descends into subdirectories; false scans only the root.
		Recursive bool `json:"recursive" mapstructure:"recursive"`
		// Exclude lists doublestar globs matched against root-relative paths.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
	}

	// SubmitConfig controls dispatch.
	SubmitConfig struct {
		Mode           submit.Mode `json:"mode" mapstructure:"mode"`
		MaxConcurrency int         `json:"max_concurrency" mapstructure:"max_concurrency"`
	}

	// ServiceConfig locates the grading service.
	ServiceConfig struct {
		URL     string        `json:"url" mapstructure:"url"`
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// UIConfig holds user interface preferences.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		Markers []MarkerEntry `json:"markers" mapstructure:"markers"`
		Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
		Submit  SubmitConfig  `json:"submit" mapstructure:"submit"`
		Service ServiceConfig `json:"service" mapstructure:"service"`
		UI      UIConfig      `json:"ui" mapstructure:"ui"`
	}

	// InvalidScanConfigError collects ScanConfig field errors.
	InvalidScanConfigError struct {
		FieldErrors []error
	}

	// InvalidSubmitConfigError collects SubmitConfig field errors.
	InvalidSubmitConfigError struct {
		FieldErrors []error
	}

	// InvalidServiceConfigError collects ServiceConfig field errors.
	InvalidServiceConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// the errors of every section.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	keywords := annotation.DefaultKeywords()
	markers := make([]MarkerEntry, len(keywords))
	for i, k := range keywords {
		markers[i] = MarkerEntry{Extension: k.Extension, Marker: k.Marker}
	}
	return &Config{
		Markers: markers,
		Scan: ScanConfig{
			MaxDepth:  discovery.DefaultMaxDepth,
			Recursive: true,
			Exclude:   discovery.DefaultExcludes(),
		},
		Submit: SubmitConfig{
			Mode: submit.DefaultMode,
		},
		Service: ServiceConfig{
			Timeout: DefaultTimeout,
		},
	}
}

// Keywords converts the marker entries for annotation.NewMarkers.
func (c *Config) Keywords() []annotation.Keyword {
	out := make([]annotation.Keyword, len(c.Markers))
	for i, m := range c.Markers {
		out[i] = annotation.Keyword{Extension: m.Extension, Marker: m.Marker}
	}
	return out
}

// BuildMarkers validates the marker entries and builds the lookup table.
func (c *Config) BuildMarkers() (*annotation.Markers, error) {
	return annotation.NewMarkers(c.Keywords())
}

// IsValid returns whether the ScanConfig has valid fields.
func (c ScanConfig) IsValid() (bool, []error) {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("scan.max_depth: must not be negative, got %d", c.MaxDepth))
	}
	for i, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("scan.exclude[%d]: invalid glob %q", i, pattern))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidScanConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the SubmitConfig has valid fields.
func (c SubmitConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.Mode.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("submit.mode: %w", err))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("submit.max_concurrency: must not be negative, got %d", c.MaxConcurrency))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSubmitConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the ServiceConfig has valid fields. An empty URL
// is valid here; it only becomes an error when there is something to submit.
func (c ServiceConfig) IsValid() (bool, []error) {
	var errs []error
	if c.URL != "" {
		if _, err := upload.ParseBaseURL(c.URL); err != nil {
			errs = append(errs, fmt.Errorf("service.url: %w", err))
		}
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("service.timeout: must be positive, got %s", c.Timeout))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidServiceConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields. It delegates to each
// section and to annotation.NewMarkers for the marker table.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, err := c.BuildMarkers(); err != nil {
		errs = append(errs, fmt.Errorf("markers: %w", err))
	}
	if valid, fieldErrs := c.Scan.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Submit.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Service.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate returns the first IsValid error, or nil.
func (c Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// Error implements the error interface for InvalidScanConfigError.
func (e *InvalidScanConfigError) Error() string {
	return joinFieldErrors("invalid scan config", e.FieldErrors)
}

// Unwrap returns ErrInvalidScanConfig for errors.Is() compatibility.
func (e *InvalidScanConfigError) Unwrap() error { return ErrInvalidScanConfig }

// Error implements the error interface for InvalidSubmitConfigError.
func (e *InvalidSubmitConfigError) Error() string {
	return joinFieldErrors("invalid submit config", e.FieldErrors)
}

// Unwrap returns ErrInvalidSubmitConfig for errors.Is() compatibility.
func (e *InvalidSubmitConfigError) Unwrap() error { return ErrInvalidSubmitConfig }

// Error implements the error interface for InvalidServiceConfigError.
func (e *InvalidServiceConfigError) Error() string {
	return joinFieldErrors("invalid service config", e.FieldErrors)
}

// Unwrap returns ErrInvalidServiceConfig for errors.Is() compatibility.
func (e *InvalidServiceConfigError) Unwrap() error { return ErrInvalidServiceConfig }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return joinFieldErrors("invalid config", e.FieldErrors)
}

// Unwrap returns ErrInvalidConfig plus the field errors, so errors.Is matches
// both the sentinel and any section sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func joinFieldErrors(prefix string, errs []error) string {
	if len(errs) == 1 {
		return prefix + ": " + errs[0].Error()
	}
	return fmt.Sprintf("%s: %d field error(s): %v", prefix, len(errs), errors.Join(errs...))
}
