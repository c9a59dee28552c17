package domain

import (
	"fmt"
	"time"
)

type AuthStatus string

const (
	AuthStatusUnauthenticated AuthStatus = "unauthenticated"
	AuthStatusValid           AuthStatus = "valid"
	AuthStatusExpired         AuthStatus = "expired"
	AuthStatusInvalid         AuthStatus = "invalid"
)

func ParseAuthStatus(raw string) (AuthStatus, error) {
	switch AuthStatus(raw) {
	case AuthStatusUnauthenticated, AuthStatusValid, AuthStatusExpired, AuthStatusInvalid:
		return AuthStatus(raw), nil
	case "":
		return AuthStatusUnauthenticated, nil
	default:
		return "", fmt.Errorf("unknown auth status %q", raw)
	}
}

// AuthState is session bookkeeping only. The session material itself lives
// in the secret store and never passes through this type.
type AuthState struct {
	Status AuthStatus
	// AccountLabel is a display hint (e.g. the signed-in email), never used
	// for authentication.
	AccountLabel    string
	LastValidatedAt time.Time
}

// CanQuery reports whether a query executor call should attempt to proceed.
func (s AuthState) CanQuery() bool {
	return s.Status == AuthStatusValid
}
