// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray - secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green - successful submissions.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red - failed submissions and fatal errors.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber - warnings.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue - group keys and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// KeyStyle is for group keys, config keys and paths.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
