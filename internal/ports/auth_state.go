package ports

import (
	"context"

	"github.com/bnema/boards-cli/internal/domain"
)

// AuthStateStore persists auth bookkeeping (status, labels, timestamps).
// Session secrets never pass through it; they live in a SecretStore.
type AuthStateStore interface {
	Load(ctx context.Context) (domain.AuthState, error)
	Save(ctx context.Context, state domain.AuthState) error
}
