package ports

import (
	"context"

	"github.com/bnema/boards-cli/internal/domain"
)

// LibraryRepository persists the library as one aggregate: every operation
// loads the full document and rewrites it whole.
type LibraryRepository interface {
	Load(ctx context.Context) (domain.Library, error)
	Save(ctx context.Context, library domain.Library) error
}
