// SPDX-License-Identifier: MPL-2.0

package credentials

import (
	"context"
	"fmt"
	"os"
)

const (
	// EnvUsername is the environment variable holding the username.
	EnvUsername = "AUTOSUBMIT_USERNAME"
	// EnvPassword is the environment variable holding the secret.
	EnvPassword = "AUTOSUBMIT_PASSWORD"
)

// EnvProvider reads credentials from the environment.
type EnvProvider struct {
	// Getenv looks up a variable; nil means os.Getenv.
	Getenv func(string) string
}

// Credentials implements Provider. It returns whatever is set and wraps
// ErrMissing when either field is empty, so callers can fill in the gaps.
func (p EnvProvider) Credentials(context.Context) (Credentials, error) {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	creds := Credentials{
		Username: getenv(EnvUsername),
		Password: Secret(getenv(EnvPassword)),
	}
	switch {
	case creds.Username == "":
		return creds, fmt.Errorf("%w: %s is not set", ErrMissing, EnvUsername)
	case creds.Password == "":
		return creds, fmt.Errorf("%w: %s is not set", ErrMissing, EnvPassword)
	}
	return creds, nil
}
