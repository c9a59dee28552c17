package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

// TransferService exports the library to a portable snapshot document and
// reconciles snapshots back in with merge or replace semantics.
type TransferService struct {
	repo   ports.LibraryRepository
	states ports.AuthStateStore
	clock  ports.Clock
}

func NewTransferService(repo ports.LibraryRepository, states ports.AuthStateStore, clock ports.Clock) *TransferService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &TransferService{
		repo:   repo,
		states: states,
		clock:  clock,
	}
}

func (s *TransferService) Export(ctx context.Context, cmd ExportCommand) (ExportResult, error) {
	lib, err := s.repo.Load(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load library: %w", err)
	}

	exportedAt := s.clock.Now().UTC()
	doc := snapshotFromLibrary(lib, exportedAt)

	if cmd.IncludeAuth {
		state, err := s.states.Load(ctx)
		if err != nil {
			return ExportResult{}, fmt.Errorf("load auth state: %w", err)
		}
		doc.Auth = snapshotAuthFromState(state)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(cmd.Path, data, 0o600); err != nil {
		return ExportResult{}, fmt.Errorf("write snapshot %s: %w", cmd.Path, err)
	}

	return ExportResult{
		Path:         cmd.Path,
		ExportedAt:   exportedAt,
		BoardCount:   len(lib.Boards),
		IncludedAuth: cmd.IncludeAuth,
	}, nil
}

// Import computes an ImportPlan against the current library and, unless
// dry-run, applies it in a single persisted write.
func (s *TransferService) Import(ctx context.Context, cmd ImportCommand) (ImportPlan, error) {
	if !cmd.Mode.Valid() {
		return ImportPlan{}, fmt.Errorf("unsupported import mode %q", cmd.Mode)
	}

	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImportPlan{}, fmt.Errorf("snapshot %s: %w", cmd.Path, domain.ErrSnapshotNotFound)
		}

		return ImportPlan{}, fmt.Errorf("read snapshot %s: %w", cmd.Path, err)
	}

	doc, err := parseSnapshotDocument(data)
	if err != nil {
		return ImportPlan{}, fmt.Errorf("snapshot %s: %w", cmd.Path, err)
	}
	incoming := libraryFromSnapshot(doc)

	current, err := s.repo.Load(ctx)
	if err != nil {
		return ImportPlan{}, fmt.Errorf("load library: %w", err)
	}

	plan := buildImportPlan(cmd.Mode, current, incoming)
	plan.ExportedAt = parseSnapshotTime(doc.ExportedAt)

	merged := applyImportPlan(cmd.Mode, current, incoming)
	plan.ActiveBoardID = merged.ActiveBoardID

	if cmd.DryRun {
		return plan, nil
	}

	if err := s.repo.Save(ctx, merged); err != nil {
		return ImportPlan{}, fmt.Errorf("save library: %w", err)
	}
	plan.Applied = true

	return plan, nil
}

func buildImportPlan(mode ImportMode, current, incoming domain.Library) ImportPlan {
	plan := ImportPlan{Mode: mode}

	for _, board := range incoming.Boards {
		if _, ok := current.Get(board.ID); ok {
			plan.Overwrites = append(plan.Overwrites, board)
		} else {
			plan.Additions = append(plan.Additions, board)
		}
	}

	for _, board := range current.Boards {
		if _, ok := incoming.Get(board.ID); ok {
			continue
		}
		if mode == ImportModeReplace {
			plan.Removals = append(plan.Removals, board)
		} else {
			plan.Unchanged = append(plan.Unchanged, board)
		}
	}

	return plan
}

// applyImportPlan builds the post-import library. Merge keeps the local
// active pointer (cleared only if it no longer resolves); replace takes
// the snapshot's.
func applyImportPlan(mode ImportMode, current, incoming domain.Library) domain.Library {
	if mode == ImportModeReplace {
		merged := incoming.Clone()
		merged.Normalize()

		return merged
	}

	merged := current.Clone()
	for _, board := range incoming.Boards {
		// Snapshot wins on overlap, all fields taken verbatim.
		if err := merged.Replace(board); err != nil {
			merged.Boards = append(merged.Boards, board)
		}
	}
	merged.Normalize()

	return merged
}
