// Package keyring stores session secrets in the OS keychain through the
// zalando/go-keyring backend.
package keyring

import (
	"context"
	"errors"
	"fmt"
	"os"

	zkr "github.com/zalando/go-keyring"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

const (
	serviceName = "bd"

	// disableEnv opts out of the keychain, forcing callers onto their
	// fallback store. Useful on headless hosts without a secret service.
	disableEnv = "BD_NO_KEYRING"
)

type Store struct{}

var _ ports.SecretStore = (*Store)(nil)

var errKeyringDisabled = errors.New("keyring disabled by " + disableEnv)

func NewStore() *Store {
	return &Store{}
}

// Available reports whether the keychain can be used at all. A probe
// write is the only reliable way to find out across platforms.
func Available() bool {
	if os.Getenv(disableEnv) != "" {
		return false
	}

	probeKey := "availability-probe"
	if err := zkr.Set(serviceName, probeKey, "ok"); err != nil {
		return false
	}
	_ = zkr.Delete(serviceName, probeKey)

	return true
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if os.Getenv(disableEnv) != "" {
		return errKeyringDisabled
	}

	if err := zkr.Set(serviceName, key, value); err != nil {
		return fmt.Errorf("keychain set %q: %w", key, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if os.Getenv(disableEnv) != "" {
		return "", errKeyringDisabled
	}

	value, err := zkr.Get(serviceName, key)
	if err != nil {
		if errors.Is(err, zkr.ErrNotFound) {
			return "", fmt.Errorf("keychain secret %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", fmt.Errorf("keychain get %q: %w", key, err)
	}

	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if os.Getenv(disableEnv) != "" {
		return errKeyringDisabled
	}

	if err := zkr.Delete(serviceName, key); err != nil {
		if errors.Is(err, zkr.ErrNotFound) {
			return fmt.Errorf("keychain secret %q: %w", key, domain.ErrSecretNotFound)
		}
		return fmt.Errorf("keychain delete %q: %w", key, err)
	}

	return nil
}
