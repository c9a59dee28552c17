package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

const DefaultSessionSecretKey = "boards/session"

// AuthService owns authentication bookkeeping: interactive login, status
// reporting with an optional live probe, and logout. Session material only
// ever moves between the flow and the secret store.
type AuthService struct {
	flow      ports.AuthFlow
	secrets   ports.SecretStore
	states    ports.AuthStateStore
	clock     ports.Clock
	secretKey string
}

func NewAuthService(
	flow ports.AuthFlow,
	secrets ports.SecretStore,
	states ports.AuthStateStore,
	clock ports.Clock,
	secretKey string,
) *AuthService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if secretKey == "" {
		secretKey = DefaultSessionSecretKey
	}

	return &AuthService{
		flow:      flow,
		secrets:   secrets,
		states:    states,
		clock:     clock,
		secretKey: secretKey,
	}
}

func (s *AuthService) Login(ctx context.Context) (domain.AuthState, error) {
	result, err := s.flow.Login(ctx)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("interactive login: %w", err)
	}

	if err := s.secrets.Put(ctx, s.secretKey, result.SessionJSON); err != nil {
		return domain.AuthState{}, fmt.Errorf("store session secret: %w", err)
	}

	state := domain.AuthState{
		Status:          domain.AuthStatusValid,
		AccountLabel:    result.AccountLabel,
		LastValidatedAt: s.clock.Now(),
	}
	if err := s.states.Save(ctx, state); err != nil {
		if rollbackErr := s.secrets.Delete(ctx, s.secretKey); rollbackErr != nil {
			return domain.AuthState{}, fmt.Errorf("save auth state and rollback session secret: %w", errors.Join(err, rollbackErr))
		}

		return domain.AuthState{}, fmt.Errorf("save auth state: %w", err)
	}

	return state, nil
}

// Status returns the recorded auth state. With probe set it additionally
// verifies the stored session against the remote and persists the result.
func (s *AuthService) Status(ctx context.Context, probe bool) (domain.AuthState, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("load auth state: %w", err)
	}
	if !probe {
		return state, nil
	}

	session, err := s.secrets.Get(ctx, s.secretKey)
	if err != nil {
		if !errors.Is(err, domain.ErrSecretNotFound) {
			return domain.AuthState{}, fmt.Errorf("load session secret: %w", err)
		}
		state.Status = domain.AuthStatusUnauthenticated
		state.LastValidatedAt = s.clock.Now()
		if err := s.states.Save(ctx, state); err != nil {
			return domain.AuthState{}, fmt.Errorf("save auth state: %w", err)
		}

		return state, nil
	}

	status, err := s.flow.Probe(ctx, session)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("probe session: %w", err)
	}

	state.Status = status
	state.LastValidatedAt = s.clock.Now()
	if err := s.states.Save(ctx, state); err != nil {
		return domain.AuthState{}, fmt.Errorf("save auth state: %w", err)
	}

	return state, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.secrets.Delete(ctx, s.secretKey); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("delete session secret: %w", err)
	}

	if err := s.states.Save(ctx, domain.AuthState{Status: domain.AuthStatusUnauthenticated}); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}

	return nil
}
