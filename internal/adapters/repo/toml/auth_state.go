package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	authStatePathKey  = "auth.state_path"
	authStateFileName = "auth.toml"
)

// StateStore persists auth bookkeeping next to the library file. Session
// material never lands here; only status, label and timestamps do.
type StateStore struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.AuthStateStore = (*StateStore)(nil)

func NewStateStore(cfg *viper.Viper) (*StateStore, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	path := cfg.GetString(authStatePathKey)
	if path == "" {
		path = filepath.Join(homeDir, configDirName, authStateFileName)
	}

	path, err = normalizeLibraryPath(path)
	if err != nil {
		return nil, err
	}

	return &StateStore{path: path, mu: lockForPath(path)}, nil
}

func (s *StateStore) Load(ctx context.Context) (domain.AuthState, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuthState{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return domain.AuthState{}, err
	}

	status, err := domain.ParseAuthStatus(file.Status)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("auth state file: %w", err)
	}

	return domain.AuthState{
		Status:          status,
		AccountLabel:    file.AccountLabel,
		LastValidatedAt: parseTime(file.LastValidatedAt),
	}, nil
}

func (s *StateStore) Save(ctx context.Context, state domain.AuthState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := authStateSchema{
		Version:         currentSchemaVersion,
		Status:          string(state.Status),
		AccountLabel:    state.AccountLabel,
		LastValidatedAt: formatTime(state.LastValidatedAt),
	}

	return writeTOMLFile(s.path, file)
}

func (s *StateStore) readSchema() (authStateSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return authStateSchema{}, nil
		}
		return authStateSchema{}, fmt.Errorf("read auth state file: %w", err)
	}

	var file authStateSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return authStateSchema{}, fmt.Errorf("decode auth state file: %w", err)
	}
	if file.Version > currentSchemaVersion {
		return authStateSchema{}, fmt.Errorf("unsupported auth state schema version %d (current %d)", file.Version, currentSchemaVersion)
	}

	return file, nil
}

type authStateSchema struct {
	Version         int    `toml:"version"`
	Status          string `toml:"status,omitempty"`
	AccountLabel    string `toml:"account_label,omitempty"`
	LastValidatedAt string `toml:"last_validated_at,omitempty"`
}

func writeTOMLFile(path string, file any) error {
	if err := os.MkdirAll(filepath.Dir(path), libraryDirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tempFile.Chmod(libraryFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(path, libraryFileMode); err != nil {
		return fmt.Errorf("chmod file: %w", err)
	}

	return nil
}
