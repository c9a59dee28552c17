package ports

import (
	"context"

	"github.com/bnema/boards-cli/internal/domain"
)

// LoginResult carries captured session material out of an interactive
// login. SessionJSON is opaque to callers and goes straight into a
// SecretStore.
type LoginResult struct {
	SessionJSON  string
	AccountLabel string
}

// AuthFlow drives interactive login and session validation against the
// remote product.
type AuthFlow interface {
	Login(ctx context.Context) (LoginResult, error)
	Probe(ctx context.Context, sessionJSON string) (domain.AuthStatus, error)
}
