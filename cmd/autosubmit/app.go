// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/autosubmit/autosubmit/internal/config"
	"github.com/autosubmit/autosubmit/internal/credentials"
	"github.com/autosubmit/autosubmit/internal/submit"
	"github.com/autosubmit/autosubmit/internal/upload"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Loaded, error)
	}

	// SubmitterFactory builds the submission capability for a service
	// configuration. It is only called when there is something to submit.
	SubmitterFactory func(svc config.ServiceConfig) (submit.Submitter, error)

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives an App.
	App struct {
		Config      ConfigProvider
		Credentials credentials.Provider
		Submitters  SubmitterFactory
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
		isTerminal  func(io.Writer) bool
		verbose     bool
		logger      *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Credentials credentials.Provider
		Submitters  SubmitterFactory
		Stdin       io.Reader
		Stdout      io.Writer
		Stderr      io.Writer
		// IsTerminal reports whether a writer is an interactive terminal.
		IsTerminal func(io.Writer) bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = isTerminal
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Credentials == nil {
		deps.Credentials = credentials.Resolver{
			Prompt: &credentials.Prompt{
				In:  deps.Stdin,
				Out: deps.Stderr,
				IsTerminal: func() bool {
					f, ok := deps.Stdin.(*os.File)
					return ok && term.IsTerminal(int(f.Fd()))
				},
			},
		}
	}
	if deps.Submitters == nil {
		deps.Submitters = httpSubmitter
	}

	app := &App{
		Config:      deps.Config,
		Credentials: deps.Credentials,
		Submitters:  deps.Submitters,
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		isTerminal:  deps.IsTerminal,
	}
	app.setVerbose(false)
	return app
}

// setVerbose installs a charmbracelet/log logger as the slog handler. Debug
// output is enabled in verbose mode.
func (a *App) setVerbose(verbose bool) {
	a.verbose = verbose
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "autosubmit",
		Level:  level,
	})
	a.logger = slog.New(handler)
}

func httpSubmitter(svc config.ServiceConfig) (submit.Submitter, error) {
	c, err := upload.NewClient(svc.URL,
		upload.WithTimeout(svc.Timeout),
		upload.WithUserAgent("autosubmit/"+Version),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
