// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for autosubmit.
//
// The root command scans a directory for annotated source files, groups them
// by course and assignment and submits each group. Subcommands list the plan
// without submitting and manage the configuration file.
package cmd
