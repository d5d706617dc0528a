package client

import (
	"context"
	"errors"
)

// ErrInteractiveLoginUnavailable is returned by NoPrompt when a login would need operator input.
var ErrInteractiveLoginUnavailable = errors.New("interactive login unavailable: no cached session")

// CredentialProvider supplies first-login credentials. Each call may block on the operator.
type CredentialProvider interface {
	Phone(ctx context.Context) (string, error)
	Password(ctx context.Context) (string, error)
	Code(ctx context.Context) (string, error)
}

// NoPrompt refuses every credential request. Use it where nobody can answer,
// so a missing or expired session fails fast instead of hanging.
type NoPrompt struct{}

func (NoPrompt) Phone(context.Context) (string, error)    { return "", ErrInteractiveLoginUnavailable }
func (NoPrompt) Password(context.Context) (string, error) { return "", ErrInteractiveLoginUnavailable }
func (NoPrompt) Code(context.Context) (string, error)     { return "", ErrInteractiveLoginUnavailable }
