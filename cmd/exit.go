package cmd

import (
	"errors"

	"github.com/bnema/boards-cli/internal/domain"
)

// ExitCode maps an Execute error onto the documented process exit
// status. Each failure kind keeps a stable code so scripts can branch
// without parsing messages.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrNoActiveBoard):
		return 9
	case errors.Is(err, domain.ErrSnapshotFormat):
		return 8
	case errors.Is(err, domain.ErrBoardNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		return 7
	case errors.Is(err, domain.ErrDuplicateBoard):
		return 6
	case errors.Is(err, domain.ErrRemoteFailure):
		return 5
	case errors.Is(err, domain.ErrAnswerTimeout):
		return 4
	case errors.Is(err, domain.ErrAuthRequired):
		return 3
	case errors.Is(err, domain.ErrBoardResolution):
		return 2
	default:
		return 1
	}
}
