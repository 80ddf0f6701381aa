// SPDX-License-Identifier: MPL-2.0

package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

type (
	// Prompt asks the user for missing credentials with a masked secret field.
	Prompt struct {
		// In and Out default to the process stdin and stderr.
		In  io.Reader
		Out io.Writer
		// IsTerminal reports whether In is interactive; nil checks os.Stdin.
		IsTerminal func() bool
		// Accessible renders plain line prompts instead of the full form.
		Accessible bool
	}

	// Resolver reads credentials from the environment and prompts for
	// whatever is missing.
	Resolver struct {
		Env    EnvProvider
		Prompt *Prompt
	}
)

// Fill prompts for the fields of partial that are empty.
func (p *Prompt) Fill(ctx context.Context, partial Credentials) (Credentials, error) {
	if partial.Complete() {
		return partial, nil
	}
	if !p.interactive() {
		return partial, fmt.Errorf("%w: stdin is not a terminal; set %s and %s", ErrMissing, EnvUsername, EnvPassword)
	}

	username := partial.Username
	password := partial.Password.Reveal()

	var fields []huh.Field
	if username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&username).
			Validate(required("username")))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(required("password")))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(p.in()).
		WithOutput(p.out()).
		WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return partial, ErrCanceled
		}
		return partial, fmt.Errorf("credential prompt: %w", err)
	}

	return Credentials{Username: strings.TrimSpace(username), Password: Secret(password)}, nil
}

// Credentials implements Provider.
func (p *Prompt) Credentials(ctx context.Context) (Credentials, error) {
	return p.Fill(ctx, Credentials{})
}

// Credentials implements Provider.
func (r Resolver) Credentials(ctx context.Context) (Credentials, error) {
	creds, err := r.Env.Credentials(ctx)
	if err == nil {
		return creds, nil
	}
	if r.Prompt == nil || !errors.Is(err, ErrMissing) {
		return creds, err
	}
	return r.Prompt.Fill(ctx, creds)
}

func (p *Prompt) interactive() bool {
	if p.IsTerminal != nil {
		return p.IsTerminal()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p *Prompt) in() io.Reader {
	if p.In != nil {
		return p.In
	}
	return os.Stdin
}

func (p *Prompt) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stderr
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
