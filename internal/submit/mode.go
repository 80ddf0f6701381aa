// SPDX-License-Identifier: MPL-2.0

package submit

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModeSequential submits one group at a time, awaiting each result.
	ModeSequential Mode = "sequential"
	// ModeConcurrent dispatches every group without waiting for the others.
	ModeConcurrent Mode = "concurrent"

	// DefaultMode is used when no mode is configured.
	DefaultMode = ModeConcurrent
)

// ErrInvalidMode is the sentinel wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid submission mode")

type (
	// Mode selects the dispatch policy.
	Mode string

	// InvalidModeError is returned by ParseMode for unknown values.
	InvalidModeError struct {
		Value string
	}
)

// Modes returns every supported mode.
func Modes() []Mode {
	return []Mode{ModeSequential, ModeConcurrent}
}

// ParseMode parses a mode name case-insensitively. The empty string yields
// DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DefaultMode, nil
	case ModeSequential, ModeConcurrent:
		return m, nil
	default:
		return "", &InvalidModeError{Value: s}
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// Validate returns an InvalidModeError for unknown modes.
func (m Mode) Validate() error {
	if _, err := ParseMode(string(m)); err != nil || m == "" {
		return &InvalidModeError{Value: string(m)}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid submission mode %q (expected %s or %s)", e.Value, ModeSequential, ModeConcurrent)
}

// Unwrap returns ErrInvalidMode.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }
