package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func TestAuthServiceLoginStoresSecretAndState(t *testing.T) {
	flow := &fakeAuthFlow{result: ports.LoginResult{
		SessionJSON:  `[{"name": "session", "value": "opaque"}]`,
		AccountLabel: "tester@example.com",
	}}
	secrets := newFakeSecretStore()
	states := &fakeAuthStateStore{}
	service := NewAuthService(flow, secrets, states, newFakeClock(authNow), "")

	state, err := service.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.AuthStatusValid, state.Status)
	assert.Equal(t, "tester@example.com", state.AccountLabel)
	assert.Equal(t, authNow, state.LastValidatedAt)

	stored, err := secrets.Get(context.Background(), DefaultSessionSecretKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"name": "session", "value": "opaque"}]`, stored)
	assert.Equal(t, state, states.state)
}

func TestAuthServiceLoginRollsBackSecretWhenStateSaveFails(t *testing.T) {
	flow := &fakeAuthFlow{result: ports.LoginResult{SessionJSON: "session-blob"}}
	secrets := newFakeSecretStore()
	states := &fakeAuthStateStore{saveErr: errors.New("state file locked")}
	service := NewAuthService(flow, secrets, states, newFakeClock(authNow), "")

	_, err := service.Login(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "save auth state")

	_, err = secrets.Get(context.Background(), DefaultSessionSecretKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound, "orphaned session secrets must not linger")
}

func TestAuthServiceLoginFlowFailureLeavesNothingBehind(t *testing.T) {
	flow := &fakeAuthFlow{loginErr: errors.New("window closed")}
	secrets := newFakeSecretStore()
	states := &fakeAuthStateStore{}
	service := NewAuthService(flow, secrets, states, newFakeClock(authNow), "")

	_, err := service.Login(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "interactive login")
	assert.Empty(t, secrets.values)
	assert.Empty(t, states.saves)
}

func TestAuthServiceStatusWithoutProbeReturnsRecordedState(t *testing.T) {
	recorded := domain.AuthState{Status: domain.AuthStatusExpired, AccountLabel: "tester@example.com"}
	flow := &fakeAuthFlow{}
	service := NewAuthService(flow, newFakeSecretStore(), &fakeAuthStateStore{state: recorded}, newFakeClock(authNow), "")

	state, err := service.Status(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, recorded, state)
	assert.Empty(t, flow.probed, "no probe without the flag")
}

func TestAuthServiceStatusProbeUpdatesState(t *testing.T) {
	secrets := newFakeSecretStore()
	require.NoError(t, secrets.Put(context.Background(), DefaultSessionSecretKey, "session-blob"))

	flow := &fakeAuthFlow{probeStatus: domain.AuthStatusExpired}
	states := &fakeAuthStateStore{state: validState()}
	service := NewAuthService(flow, secrets, states, newFakeClock(authNow), "")

	state, err := service.Status(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, domain.AuthStatusExpired, state.Status)
	assert.Equal(t, authNow, state.LastValidatedAt)
	assert.Equal(t, []string{"session-blob"}, flow.probed)
	assert.Equal(t, state, states.state, "probe outcome must be persisted")
}

func TestAuthServiceStatusProbeWithoutSecretMarksUnauthenticated(t *testing.T) {
	flow := &fakeAuthFlow{probeStatus: domain.AuthStatusValid}
	states := &fakeAuthStateStore{state: validState()}
	service := NewAuthService(flow, newFakeSecretStore(), states, newFakeClock(authNow), "")

	state, err := service.Status(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, domain.AuthStatusUnauthenticated, state.Status)
	assert.Empty(t, flow.probed, "a missing secret is decided locally")
	assert.Equal(t, domain.AuthStatusUnauthenticated, states.state.Status)
}

func TestAuthServiceLogout(t *testing.T) {
	secrets := newFakeSecretStore()
	require.NoError(t, secrets.Put(context.Background(), DefaultSessionSecretKey, "session-blob"))
	states := &fakeAuthStateStore{state: validState()}
	service := NewAuthService(&fakeAuthFlow{}, secrets, states, newFakeClock(authNow), "")

	require.NoError(t, service.Logout(context.Background()))

	assert.Empty(t, secrets.values)
	assert.Equal(t, domain.AuthStatusUnauthenticated, states.state.Status)
	assert.Empty(t, states.state.AccountLabel)
}

func TestAuthServiceLogoutToleratesMissingSecret(t *testing.T) {
	states := &fakeAuthStateStore{state: validState()}
	service := NewAuthService(&fakeAuthFlow{}, newFakeSecretStore(), states, newFakeClock(authNow), "")

	require.NoError(t, service.Logout(context.Background()))
	assert.Equal(t, domain.AuthStatusUnauthenticated, states.state.Status)
}

func TestAuthServiceCustomSecretKey(t *testing.T) {
	flow := &fakeAuthFlow{result: ports.LoginResult{SessionJSON: "session-blob"}}
	secrets := newFakeSecretStore()
	service := NewAuthService(flow, secrets, &fakeAuthStateStore{}, newFakeClock(authNow), "work/session")

	_, err := service.Login(context.Background())
	require.NoError(t, err)

	_, err = secrets.Get(context.Background(), "work/session")
	require.NoError(t, err)
}
