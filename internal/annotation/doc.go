// SPDX-License-Identifier: MPL-2.0

// Package annotation extracts submission annotations from source files.
//
// An annotation is a comment line that starts with a language-specific marker
// followed by a course and an assignment identifier:
//
//	;;;(autosubmit CS135 A07)
//	//(autosubmit CS136 A03)
//
// The marker is selected by the file extension. Only the first ScanLimit lines
// of a file are inspected; files whose annotation is missing or malformed are
// reported as absent rather than as errors.
package annotation
