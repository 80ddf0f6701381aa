// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// These benchmarks cover the hot paths of a submission run:
//   - CUE config loading and schema validation
//   - Annotation parsing
//   - Directory discovery and grouping
//   - Archive building for multi-file groups
//   - End-to-end scan and dispatch with an in-memory submitter
//
// To generate a profile, run:
//
//	go test -run=^$ -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
