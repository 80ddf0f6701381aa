// SPDX-License-Identifier: MPL-2.0

// Package discovery enumerates candidate source files under a root directory.
//
// Two modes are supported: flat (the root directory only) and recursive with a
// depth bound measured from the root (the root is depth 0, its children depth 1).
// The bound limits which directories are read, not which files are reported:
// every matching file inside a read directory is a candidate.
//
// Symbolic links are never followed. A symlinked file is not a candidate and a
// symlinked directory is not descended, which rules out link loops and duplicate
// submissions of the same file through different paths.
//
// File organization:
//   - discovery.go: Discovery type, options and result types
//   - discovery_files.go: the directory walk
//   - diagnostic.go: non-fatal findings returned alongside results
package discovery
