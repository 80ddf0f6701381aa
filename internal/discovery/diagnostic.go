// SPDX-License-Identifier: MPL-2.0

package discovery

import "log/slog"

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates an informational note, e.g. a skipped symlink.
	SeverityInfo Severity = "info"

	// CodeDirUnreadable is reported when a subdirectory cannot be listed.
	CodeDirUnreadable = "dir_unreadable"
	// CodeSymlinkSkipped is reported for every symbolic link that is not followed.
	CodeSymlinkSkipped = "symlink_skipped"
	// CodeFileUnreadable is reported when a candidate file cannot be parsed
	// for an annotation because it could not be opened or read.
	CodeFileUnreadable = "file_unreadable"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured, non-fatal discovery finding that is
	// returned to callers (rather than written to stderr) for consistent
	// rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "dir_unreadable").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Log writes the diagnostic to logger at a level matching its severity.
func (d Diagnostic) Log(logger *slog.Logger) {
	attrs := []any{"code", d.Code}
	if d.Path != "" {
		attrs = append(attrs, "path", d.Path)
	}
	if d.Cause != nil {
		attrs = append(attrs, "error", d.Cause)
	}
	switch d.Severity {
	case SeverityWarning:
		logger.Warn(d.Message, attrs...)
	default:
		logger.Debug(d.Message, attrs...)
	}
}
