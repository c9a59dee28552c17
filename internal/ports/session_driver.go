package ports

import (
	"context"

	"github.com/bnema/boards-cli/internal/domain"
)

// SessionHandle identifies one open board conversation surface.
type SessionHandle string

// SessionDriver is the narrow capability the query executor needs from the
// remote product. Open fails with domain.ErrAuthRequired when the session
// material is missing or rejected and domain.ErrBoardNotFound when the
// board does not exist remotely. Close must be safe to call on every path,
// including after Open errors handled by the caller.
type SessionDriver interface {
	Open(ctx context.Context, boardURL string) (SessionHandle, error)
	Submit(ctx context.Context, handle SessionHandle, text string) error
	Read(ctx context.Context, handle SessionHandle) (domain.Snapshot, error)
	Close(handle SessionHandle) error
}
