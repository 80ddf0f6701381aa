// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately on setup errors instead of returning them.
//
// Helpers cover source trees (WriteFile, WriteTree), the working directory
// (MustChdir) and per-platform home and config directories (SetHomeDir,
// SetConfigHome).
package testutil
