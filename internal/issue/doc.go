// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource and remediation
// hints. An error can point at a catalog Issue whose Markdown guidance is
// rendered with glamour when the CLI writes to a terminal.
package issue
