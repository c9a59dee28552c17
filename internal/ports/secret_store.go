package ports

import "context"

// SecretStore holds opaque session material (serialized cookies) keyed by
// short names. Get returns domain.ErrSecretNotFound for absent keys.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
