package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ ports.Clock = (*fakeClock)(nil)

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// fakeSleeper advances the paired clock instead of blocking, so poll loops
// run to their deadline without real waiting.
type fakeSleeper struct {
	clock  *fakeClock
	sleeps []time.Duration
}

var _ ports.Sleeper = (*fakeSleeper)(nil)

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sleeps = append(s.sleeps, d)
	s.clock.Advance(d)

	return nil
}

type fakeAuthStateStore struct {
	mu      sync.Mutex
	state   domain.AuthState
	loadErr error
	saveErr error
	saves   []domain.AuthState
}

var _ ports.AuthStateStore = (*fakeAuthStateStore)(nil)

func (f *fakeAuthStateStore) Load(ctx context.Context) (domain.AuthState, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuthState{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return domain.AuthState{}, f.loadErr
	}

	return f.state, nil
}

func (f *fakeAuthStateStore) Save(ctx context.Context, state domain.AuthState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state
	f.saves = append(f.saves, state)

	return nil
}

type fakeSecretStore struct {
	mu      sync.Mutex
	values  map[string]string
	putErr  error
	deleted []string
}

var _ ports.SecretStore = (*fakeSecretStore)(nil)

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{values: make(map[string]string)}
}

func (f *fakeSecretStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", domain.ErrSecretNotFound
	}

	return value, nil
}

func (f *fakeSecretStore) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = value

	return nil
}

func (f *fakeSecretStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if _, ok := f.values[key]; !ok {
		return domain.ErrSecretNotFound
	}
	delete(f.values, key)

	return nil
}

type fakeAuthFlow struct {
	result      ports.LoginResult
	loginErr    error
	probeStatus domain.AuthStatus
	probeErr    error
	probed      []string
}

var _ ports.AuthFlow = (*fakeAuthFlow)(nil)

func (f *fakeAuthFlow) Login(ctx context.Context) (ports.LoginResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.LoginResult{}, err
	}
	if f.loginErr != nil {
		return ports.LoginResult{}, f.loginErr
	}

	return f.result, nil
}

func (f *fakeAuthFlow) Probe(ctx context.Context, sessionJSON string) (domain.AuthStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.probed = append(f.probed, sessionJSON)
	if f.probeErr != nil {
		return "", f.probeErr
	}

	return f.probeStatus, nil
}

// failingRepo wraps a repository and fails writes on demand, for exercising
// the paths where the exchange succeeded but bookkeeping did not.
type failingRepo struct {
	ports.LibraryRepository
	saveErr error
}

func (f *failingRepo) Save(ctx context.Context, lib domain.Library) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	return f.LibraryRepository.Save(ctx, lib)
}

func validState() domain.AuthState {
	return domain.AuthState{
		Status:       domain.AuthStatusValid,
		AccountLabel: "tester@example.com",
	}
}

func testBoard(id, url, name string) domain.Board {
	return domain.Board{
		ID:          domain.BoardID(id),
		URL:         url,
		Name:        name,
		Description: name + " board",
		CreatedAt:   time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

func mustLibrary(t *testing.T, boards ...domain.Board) domain.Library {
	t.Helper()

	var lib domain.Library
	for _, board := range boards {
		if err := lib.Add(board); err != nil {
			t.Fatalf("add board %s: %v", board.ID, err)
		}
	}

	return lib
}
