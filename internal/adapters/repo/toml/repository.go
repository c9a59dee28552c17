package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	libraryPathKey  = "library.path"
	libraryFileMode = 0o600
	libraryDirMode  = 0o700
	configDirName   = ".config/bd"
	libraryFileName = "boards.toml"
	tempFilePattern = ".boards-*.toml.tmp"
)

// Repository persists the whole board library as one TOML file. Writes are
// atomic (temp file plus rename) and instances pointing at the same path
// share a lock, so concurrent commands cannot interleave partial states.
type Repository struct {
	libraryPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.LibraryRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, configDirName, libraryFileName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDirName))
	cfg.SetDefault(libraryPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	libraryPath := cfg.GetString(libraryPathKey)
	if libraryPath == "" {
		return nil, errors.New("library path is empty")
	}
	libraryPath, err = normalizeLibraryPath(libraryPath)
	if err != nil {
		return nil, err
	}

	return &Repository{libraryPath: libraryPath, mu: lockForPath(libraryPath)}, nil
}

func (r *Repository) Load(ctx context.Context) (domain.Library, error) {
	if err := ctx.Err(); err != nil {
		return domain.Library{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Library{}, err
	}
	file.applyDefaults()

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, lib domain.Library) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := toSchema(lib)

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.libraryPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read library file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode library file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeLibraryPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve library path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.libraryPath), libraryDirMode); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode library file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.libraryPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp library file: %w", err)
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
		return fmt.Errorf("write temp library file: %w", err)
	}

	if err := tempFile.Chmod(libraryFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp library file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp library file: %w", err)
	}

	if err := os.Rename(tempName, r.libraryPath); err != nil {
		return fmt.Errorf("replace library file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.libraryPath, libraryFileMode); err != nil {
		return fmt.Errorf("chmod library file: %w", err)
	}

	return nil
}

func toSchema(lib domain.Library) fileSchema {
	boards := make([]boardSchema, 0, len(lib.Boards))
	for _, board := range lib.Boards {
		boards = append(boards, boardSchema{
			ID:          string(board.ID),
			URL:         board.URL,
			Name:        board.Name,
			Description: board.Description,
			Topics:      board.Topics,
			CreatedAt:   formatTime(board.CreatedAt),
			LastUsedAt:  formatTime(board.LastUsedAt),
			UseCount:    board.UseCount,
		})
	}

	return fileSchema{
		ActiveBoardID: string(lib.ActiveBoardID),
		Boards:        boards,
	}
}

// fromSchema rebuilds the aggregate and normalizes it, so a hand-edited
// file with a dangling active pointer or blank ids still loads.
func fromSchema(file fileSchema) domain.Library {
	lib := domain.Library{
		ActiveBoardID: domain.BoardID(file.ActiveBoardID),
	}

	for _, entry := range file.Boards {
		lib.Boards = append(lib.Boards, domain.Board{
			ID:          domain.BoardID(entry.ID),
			URL:         entry.URL,
			Name:        entry.Name,
			Description: entry.Description,
			Topics:      entry.Topics,
			CreatedAt:   parseTime(entry.CreatedAt),
			LastUsedAt:  parseTime(entry.LastUsedAt),
			UseCount:    entry.UseCount,
		})
	}

	lib.Normalize()

	return lib
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
