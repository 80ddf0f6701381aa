// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/autosubmit/autosubmit/internal/annotation"
	"github.com/autosubmit/autosubmit/internal/config"
	"github.com/autosubmit/autosubmit/internal/credentials"
	"github.com/autosubmit/autosubmit/internal/discovery"
	"github.com/autosubmit/autosubmit/internal/issue"
	"github.com/autosubmit/autosubmit/internal/scan"
	"github.com/autosubmit/autosubmit/internal/submit"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// runFlags holds the flag values shared by the root and list commands.
type runFlags struct {
	configFile     string
	root           string
	depth          int
	flat           bool
	mode           string
	maxConcurrency int
	dryRun         bool
	verbose        bool
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "autosubmit",
		Short: "Submit annotated assignment files to the grading service",
		Long: TitleStyle.Render("autosubmit") + SubtitleStyle.Render(" - submit annotated assignment files") + `

autosubmit scans a directory for source files whose first lines carry an
annotation such as

  ;;;(autosubmit CS135 A03)     (Racket)
  //(autosubmit CS136 A05)      (C)

groups them by course and assignment and submits each group once.

` + SubtitleStyle.Render("Examples:") + `
  autosubmit                       Scan . and submit every group
  autosubmit --root ./a03 --flat   Only look at files directly in ./a03
  autosubmit --dry-run             Show what would be submitted
  autosubmit list                  Same as --dry-run
  autosubmit config init           Write a default config file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd, app, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/autosubmit/config.cue)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.root, "root", ".", "directory to scan")
	pf.IntVar(&flags.depth, "depth", discovery.DefaultMaxDepth, "maximum directory depth to descend (root is 0)")
	pf.BoolVar(&flags.flat, "flat", false, "only scan the root directory")

	f := rootCmd.Flags()
	f.StringVar(&flags.mode, "mode", string(submit.DefaultMode), "dispatch mode: sequential or concurrent")
	f.IntVar(&flags.maxConcurrency, "max-concurrency", 0, "limit concurrent submissions (0 = one per group)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "group and print files without submitting")

	rootCmd.AddCommand(newListCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	app := NewApp(deps)
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}

// Main runs the CLI with the process arguments and standard streams.
func Main() int {
	return Run(context.Background(), os.Args[1:], Dependencies{})
}

// Execute is called by main.main.
func Execute() {
	os.Exit(Main())
}

// handleError renders actionable errors with their suggestions and, on a
// terminal, the linked catalog guidance. Other errors use fang's handler.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+ae.Format(a.verbose))
	if ae.Issue == 0 || !a.isTerminal(w) {
		return
	}
	if rendered, renderErr := issue.Get(ae.Issue).Render("dark"); renderErr == nil {
		fmt.Fprint(w, rendered)
	}
}

// loadConfig loads the configuration and applies flag overrides.
func (a *App) loadConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	loaded, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configFile})
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	fs := cmd.Flags()
	if fs.Changed("depth") {
		if flags.depth < 0 {
			return nil, usageError("--depth must not be negative, got %d", flags.depth)
		}
		cfg.Scan.MaxDepth = flags.depth
	}
	if fs.Changed("flat") {
		cfg.Scan.Recursive = !flags.flat
	}
	if fs.Changed("mode") {
		mode, err := submit.ParseMode(flags.mode)
		if err != nil {
			return nil, &ExitError{Code: ExitUsage, Err: fmt.Errorf("--mode: %w", err)}
		}
		cfg.Submit.Mode = mode
	}
	if fs.Changed("max-concurrency") {
		if flags.maxConcurrency < 0 {
			return nil, usageError("--max-concurrency must not be negative, got %d", flags.maxConcurrency)
		}
		cfg.Submit.MaxConcurrency = flags.maxConcurrency
	}
	if fs.Changed("verbose") {
		cfg.UI.Verbose = flags.verbose
	}

	a.setVerbose(cfg.UI.Verbose)
	if loaded.Path != "" {
		a.logger.Debug("loaded configuration", "path", loaded.Path)
	}
	return cfg, nil
}

// scan runs discovery, parsing and grouping for the configured root.
func (a *App) scan(ctx context.Context, cfg *config.Config, root string) (*scan.Plan, error) {
	markers, err := cfg.BuildMarkers()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load annotation markers").
			WithIssue(issue.InvalidMarkersId).
			Wrap(err).
			BuildError()
	}

	d := discovery.New(
		discovery.WithRoot(root),
		discovery.WithExtensions(markers.Extensions()...),
		discovery.WithMaxDepth(cfg.Scan.MaxDepth),
		discovery.WithRecursive(cfg.Scan.Recursive),
		discovery.WithExcludes(cfg.Scan.Exclude...),
	)
	plan, err := scan.New(d, annotation.NewParser(markers), a.logger).Scan(ctx)
	if err == nil {
		return plan, nil
	}

	if errors.Is(err, discovery.ErrRootNotFound) || errors.Is(err, discovery.ErrRootNotDir) {
		return nil, issue.NewErrorContext().
			WithOperation("scan submission directory").
			WithResource(root).
			WithSuggestion("Pass an existing directory with --root").
			WithIssue(issue.RootNotFoundId).
			Wrap(err).
			BuildError()
	}
	return nil, issue.WrapWithOperation(err, "scan submission directory")
}

func runSubmit(cmd *cobra.Command, app *App, flags *runFlags) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	plan, err := app.scan(ctx, cfg, flags.root)
	if err != nil {
		return err
	}

	if flags.dryRun {
		return app.renderPlan(plan, flags.root)
	}
	if len(plan.Groups) == 0 {
		app.logger.Info("no annotated files found", "root", flags.root)
		return nil
	}

	if cfg.Service.URL == "" {
		return issue.NewErrorContext().
			WithOperation("submit").
			WithSuggestion("Set service.url in the config file or AUTOSUBMIT_SERVICE_URL").
			WithSuggestion("Use --dry-run to preview the submission").
			WithIssue(issue.ServiceURLMissingId).
			Wrap(errors.New("no grading service URL configured")).
			BuildError()
	}
	submitter, err := app.Submitters(cfg.Service)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("connect to grading service").
			WithResource(cfg.Service.URL).
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	orchestrator := submit.New(submitter, app.Credentials,
		submit.WithMode(cfg.Submit.Mode),
		submit.WithMaxConcurrency(cfg.Submit.MaxConcurrency),
		submit.WithReporter(submit.NewLineReporter(app.stdout, app.resultFormatter())),
		submit.WithLogger(app.logger),
	)
	results := orchestrator.SubmitAll(ctx, plan.Groups)

	succeeded, failed := submit.Summary(results)
	app.logger.Info("submission finished", "succeeded", succeeded, "failed", failed)
	if failed > 0 && errors.Is(results[0].Err, credentials.ErrMissing) {
		app.logger.Warn("set " + credentials.EnvUsername + " and " + credentials.EnvPassword + " or run from a terminal")
		if app.isTerminal(app.stderr) {
			if rendered, renderErr := issue.Get(issue.CredentialsUnavailableId).Render("dark"); renderErr == nil {
				fmt.Fprint(app.stderr, rendered)
			}
		}
	}
	return nil
}

// resultFormatter styles result lines on a terminal and leaves them plain
// otherwise.
func (a *App) resultFormatter() func(submit.Result) string {
	if !a.isTerminal(a.stdout) {
		return submit.FormatLine
	}
	return func(r submit.Result) string {
		if r.OK() {
			return SuccessStyle.Render("✓") + " " + KeyStyle.Render(r.Key.String()) + ": " + SuccessStyle.Render(r.Message())
		}
		return ErrorStyle.Render("✗") + " " + KeyStyle.Render(r.Key.String()) + ": " + ErrorStyle.Render(r.Message())
	}
}
