// Package identity checks staff credentials against the remote identity
// provider or, in local mode, against a fixed fallback pair.
package identity

import (
	"context"
	"crypto/subtle"
	"errors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Identity struct {
	UID   string
	Email string
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, id *Identity) error
}

// Credentials is the fixed fallback pair accepted in local mode.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Match(email, password string) bool {
	if c.Email == "" {
		return false
	}
	e := subtle.ConstantTimeCompare([]byte(c.Email), []byte(email))
	p := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password))
	return e&p == 1
}
