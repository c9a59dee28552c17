package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version       int           `toml:"version"`
	ActiveBoardID string        `toml:"active_board_id,omitempty"`
	Boards        []boardSchema `toml:"boards"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported library schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type boardSchema struct {
	ID          string   `toml:"id"`
	URL         string   `toml:"url"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Topics      []string `toml:"topics,omitempty"`
	CreatedAt   string   `toml:"created_at,omitempty"`
	LastUsedAt  string   `toml:"last_used_at,omitempty"`
	UseCount    int      `toml:"use_count,omitempty"`
}
