// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/autosubmit/autosubmit/internal/scan"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultWrapWidth = 80

func newListCommand(app *App, flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the submission groups without submitting",
		Long: `Scan the root directory and print every assignment group with its files.

Nothing is sent to the grading service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			plan, err := app.scan(cmd.Context(), cfg, flags.root)
			if err != nil {
				return err
			}
			return app.renderPlan(plan, flags.root)
		},
	}
}

// renderPlan prints the grouping snapshot. Terminals get glamour-rendered
// markdown; pipes get one plain line per group followed by indented paths.
func (a *App) renderPlan(plan *scan.Plan, root string) error {
	if !a.isTerminal(a.stdout) {
		writePlainPlan(a.stdout, plan)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(a.stdout)),
	)
	if err == nil {
		var out string
		if out, err = renderer.Render(planMarkdown(plan, root)); err == nil {
			fmt.Fprint(a.stdout, out)
			return nil
		}
	}
	a.logger.Debug("markdown rendering failed", "error", err)
	writePlainPlan(a.stdout, plan)
	return nil
}

func writePlainPlan(w io.Writer, plan *scan.Plan) {
	for _, g := range plan.Groups {
		fmt.Fprintf(w, "%s (%s)\n", g.Key, fileCount(len(g.Files)))
		for _, f := range g.Files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}

func planMarkdown(plan *scan.Plan, root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Submission plan for `%s`\n\n", root)
	if len(plan.Groups) == 0 {
		b.WriteString("No annotated files found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d annotated of %d candidate files.\n\n", plan.Annotated(), len(plan.Entries))
	for _, g := range plan.Groups {
		kind := "archive"
		if g.Single() {
			kind = "single file"
		}
		fmt.Fprintf(&b, "## %s\n\n_%s, %s_\n\n", g.Key, fileCount(len(g.Files)), kind)
		for _, f := range g.Files {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fileCount(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

func terminalWidth(w io.Writer) int {
	type fd interface{ Fd() uintptr }
	if f, ok := w.(fd); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWrapWidth
}
