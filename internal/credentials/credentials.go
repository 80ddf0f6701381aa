// SPDX-License-Identifier: MPL-2.0

// Package credentials supplies the username and secret used to authenticate
// against the grading service. Secrets are passed through opaquely: they are
// redacted by every formatting path and never written anywhere.
package credentials

import (
	"context"
	"errors"
	"log/slog"
)

const redacted = "[redacted]"

var (
	// ErrMissing is returned when a provider has no value for a required field.
	ErrMissing = errors.New("credentials not available")
	// ErrCanceled is returned when the user aborts an interactive prompt.
	ErrCanceled = errors.New("credential prompt canceled")
)

type (
	// Secret is a password or token. Its String, GoString and LogValue forms
	// are redacted; use Reveal to obtain the raw value for transport.
	Secret string

	// Credentials are the username and secret for one run.
	Credentials struct {
		Username string
		Password Secret
	}

	// Provider supplies credentials.
	Provider interface {
		Credentials(ctx context.Context) (Credentials, error)
	}

	// ProviderFunc adapts a function to the Provider interface.
	ProviderFunc func(ctx context.Context) (Credentials, error)

	// Static is a Provider that always returns the same credentials.
	Static Credentials
)

// String implements fmt.Stringer without exposing the secret.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer without exposing the secret.
func (s Secret) GoString() string {
	return s.String()
}

// LogValue implements slog.LogValuer without exposing the secret.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Reveal returns the raw secret.
func (s Secret) Reveal() string {
	return string(s)
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// LogValue implements slog.LogValuer and only exposes the username.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("username", c.Username))
}

// Credentials implements Provider.
func (f ProviderFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

// Credentials implements Provider.
func (s Static) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}
