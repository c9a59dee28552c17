package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/boards-cli/internal/domain"
)

// Snapshot documents are plain JSON so they survive round-trips through
// other tooling; unknown fields are ignored on import and timestamps are
// parsed leniently.

type snapshotDocument struct {
	ExportedAt string           `json:"exported_at"`
	Library    *snapshotLibrary `json:"library"`
	Auth       *snapshotAuth    `json:"auth,omitempty"`
}

type snapshotLibrary struct {
	ActiveBoardID string          `json:"active_board_id,omitempty"`
	Boards        []snapshotBoard `json:"boards"`
}

type snapshotBoard struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Topics      []string `json:"topics,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	LastUsedAt  string   `json:"last_used_at,omitempty"`
	UseCount    int      `json:"use_count,omitempty"`
}

// snapshotAuth carries auth bookkeeping only. Session secrets are never
// exported.
type snapshotAuth struct {
	Status          string `json:"status"`
	AccountLabel    string `json:"account_label,omitempty"`
	LastValidatedAt string `json:"last_validated_at,omitempty"`
}

func parseSnapshotDocument(data []byte) (snapshotDocument, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return snapshotDocument{}, fmt.Errorf("%w: %v", domain.ErrSnapshotFormat, err)
	}

	if doc.Library == nil {
		return snapshotDocument{}, fmt.Errorf("%w: missing library section", domain.ErrSnapshotFormat)
	}
	for i, board := range doc.Library.Boards {
		if board.ID == "" {
			return snapshotDocument{}, fmt.Errorf("%w: board at index %d has no id", domain.ErrSnapshotFormat, i)
		}
	}

	return doc, nil
}

func snapshotFromLibrary(lib domain.Library, exportedAt time.Time) snapshotDocument {
	boards := make([]snapshotBoard, 0, len(lib.Boards))
	for _, board := range lib.Boards {
		boards = append(boards, snapshotBoard{
			ID:          string(board.ID),
			URL:         board.URL,
			Name:        board.Name,
			Description: board.Description,
			Topics:      board.Topics,
			CreatedAt:   formatSnapshotTime(board.CreatedAt),
			LastUsedAt:  formatSnapshotTime(board.LastUsedAt),
			UseCount:    board.UseCount,
		})
	}

	return snapshotDocument{
		ExportedAt: formatSnapshotTime(exportedAt),
		Library: &snapshotLibrary{
			ActiveBoardID: string(lib.ActiveBoardID),
			Boards:        boards,
		},
	}
}

func libraryFromSnapshot(doc snapshotDocument) domain.Library {
	lib := domain.Library{
		ActiveBoardID: domain.BoardID(doc.Library.ActiveBoardID),
	}

	for _, entry := range doc.Library.Boards {
		lib.Boards = append(lib.Boards, domain.Board{
			ID:          domain.BoardID(entry.ID),
			URL:         entry.URL,
			Name:        entry.Name,
			Description: entry.Description,
			Topics:      entry.Topics,
			CreatedAt:   parseSnapshotTime(entry.CreatedAt),
			LastUsedAt:  parseSnapshotTime(entry.LastUsedAt),
			UseCount:    entry.UseCount,
		})
	}

	lib.Normalize()

	return lib
}

func snapshotAuthFromState(state domain.AuthState) *snapshotAuth {
	return &snapshotAuth{
		Status:          string(state.Status),
		AccountLabel:    state.AccountLabel,
		LastValidatedAt: formatSnapshotTime(state.LastValidatedAt),
	}
}

func parseSnapshotTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatSnapshotTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
