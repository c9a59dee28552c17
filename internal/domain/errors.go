package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBoardNotFound    = errors.New("board not found")
	ErrDuplicateBoard   = errors.New("board already exists")
	ErrNoActiveBoard    = errors.New("no active board")
	ErrBoardResolution  = errors.New("board reference cannot be resolved")
	ErrAuthRequired     = errors.New("authentication required")
	ErrAnswerTimeout    = errors.New("timed out waiting for a stable answer")
	ErrRemoteFailure    = errors.New("remote reported a failure")
	ErrSnapshotFormat   = errors.New("invalid library snapshot")
	ErrSnapshotNotFound = errors.New("library snapshot not found")
	ErrSecretNotFound   = errors.New("secret not found")
)

// QueryTimeoutError carries the last observed snapshot so callers can show
// what the remote was mid-way through when time ran out.
type QueryTimeoutError struct {
	BoardRef     string
	Timeout      time.Duration
	LastSnapshot Snapshot
}

func (e *QueryTimeoutError) Error() string {
	if e.LastSnapshot.Empty() {
		return fmt.Sprintf("board %s: no stable answer within %s", e.BoardRef, e.Timeout)
	}

	return fmt.Sprintf("board %s: no stable answer within %s, last snapshot: %s",
		e.BoardRef, e.Timeout, truncateForError(e.LastSnapshot.Text))
}

func (e *QueryTimeoutError) Unwrap() error { return ErrAnswerTimeout }

// RemoteFailureError reports a terminal failure indicator on the remote
// surface, with whatever text accompanied it.
type RemoteFailureError struct {
	BoardRef string
	Snapshot Snapshot
}

func (e *RemoteFailureError) Error() string {
	if e.Snapshot.Empty() {
		return fmt.Sprintf("board %s: remote reported a failure", e.BoardRef)
	}

	return fmt.Sprintf("board %s: remote reported a failure: %s",
		e.BoardRef, truncateForError(e.Snapshot.Text))
}

func (e *RemoteFailureError) Unwrap() error { return ErrRemoteFailure }

func truncateForError(text string) string {
	const limit = 120

	runes := []rune(NormalizeSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}

	return string(runes[:limit]) + "..."
}
