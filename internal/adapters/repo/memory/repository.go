package memory

import (
	"context"
	"sync"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

// Repository keeps the library in process memory with the same aggregate
// semantics as the file-backed store. Loads hand out deep copies, so a
// caller mutating its snapshot never leaks into the stored state.
type Repository struct {
	mu  sync.RWMutex
	lib domain.Library
}

var _ ports.LibraryRepository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{}
}

func NewRepositoryWith(lib domain.Library) *Repository {
	clone := lib.Clone()
	clone.Normalize()

	return &Repository{lib: clone}
}

func (r *Repository) Load(ctx context.Context) (domain.Library, error) {
	if err := ctx.Err(); err != nil {
		return domain.Library{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lib.Clone(), nil
}

func (r *Repository) Save(ctx context.Context, lib domain.Library) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := lib.Clone()
	clone.Normalize()
	r.lib = clone

	return nil
}
