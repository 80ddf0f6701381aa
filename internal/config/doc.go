// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from the --config file when given, otherwise from
// config.cue in the platform config directory (~/.config/autosubmit on Linux),
// otherwise from config.cue in the working directory. Files are validated
// against the embedded #Config schema (config_schema.cue) before being merged
// over the built-in defaults. Environment variables prefixed with AUTOSUBMIT_
// take precedence over the file.
package config
