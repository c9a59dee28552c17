package domain

import (
	"fmt"
	"strings"
)

// Library is the full local board collection. ActiveBoardID is the single
// source of truth for the active pointer; Board.IsActive is materialized
// from it so callers never see two boards flagged at once.
type Library struct {
	Boards        []Board
	ActiveBoardID BoardID
}

func (l Library) Get(id BoardID) (Board, bool) {
	idx := l.index(id)
	if idx < 0 {
		return Board{}, false
	}

	return l.Boards[idx], true
}

// Add appends a new board. The first board ever added becomes active.
func (l *Library) Add(board Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	if l.index(board.ID) >= 0 {
		return ErrDuplicateBoard
	}

	wasEmpty := len(l.Boards) == 0
	l.Boards = append(l.Boards, board)
	if wasEmpty {
		l.ActiveBoardID = board.ID
	}
	l.markActive()

	return nil
}

// Replace overwrites the stored board with the same ID.
func (l *Library) Replace(board Board) error {
	idx := l.index(board.ID)
	if idx < 0 {
		return ErrBoardNotFound
	}

	l.Boards[idx] = board
	l.markActive()

	return nil
}

// Activate idempotently makes id the single active board.
func (l *Library) Activate(id BoardID) error {
	if l.index(id) < 0 {
		return ErrBoardNotFound
	}

	l.ActiveBoardID = id
	l.markActive()

	return nil
}

// Remove deletes the board. Removing the active board clears the pointer;
// no other board is promoted implicitly.
func (l *Library) Remove(id BoardID) error {
	idx := l.index(id)
	if idx < 0 {
		return ErrBoardNotFound
	}

	l.Boards = append(l.Boards[:idx], l.Boards[idx+1:]...)
	if l.ActiveBoardID == id {
		l.ActiveBoardID = ""
	}
	l.markActive()

	return nil
}

func (l Library) ActiveBoard() (Board, bool) {
	if l.ActiveBoardID == "" {
		return Board{}, false
	}

	return l.Get(l.ActiveBoardID)
}

// FindByURL matches boards by normalized URL, ignoring context ids and
// fragments on both sides.
func (l Library) FindByURL(rawURL string) (Board, bool) {
	needle, err := NormalizeBoardURL(rawURL)
	if err != nil {
		return Board{}, false
	}

	for _, board := range l.Boards {
		stored, err := NormalizeBoardURL(board.URL)
		if err != nil {
			continue
		}
		if stored == needle {
			return board, true
		}
	}

	return Board{}, false
}

// EnsureUniqueID suffixes base with -2, -3, ... until it no longer
// collides with a stored board.
func (l Library) EnsureUniqueID(base BoardID) BoardID {
	if strings.TrimSpace(string(base)) == "" {
		base = "board"
	}
	if l.index(base) < 0 {
		return base
	}

	for i := 2; ; i++ {
		candidate := BoardID(fmt.Sprintf("%s-%d", base, i))
		if l.index(candidate) < 0 {
			return candidate
		}
	}
}

// Normalize repairs invariants after an external load: trims ids, drops
// entries without one, clears a dangling active pointer, and rebuilds the
// IsActive flags.
func (l *Library) Normalize() {
	if l == nil {
		return
	}

	boards := make([]Board, 0, len(l.Boards))
	for _, board := range l.Boards {
		board.ID = BoardID(strings.TrimSpace(string(board.ID)))
		if board.ID == "" {
			continue
		}
		board.NormalizeTopics()
		boards = append(boards, board)
	}
	l.Boards = boards

	if l.ActiveBoardID != "" && l.index(l.ActiveBoardID) < 0 {
		l.ActiveBoardID = ""
	}
	l.markActive()
}

// Clone returns a deep copy, so in-memory stores can hand out snapshots
// that callers may mutate freely.
func (l Library) Clone() Library {
	out := Library{ActiveBoardID: l.ActiveBoardID}
	if l.Boards == nil {
		return out
	}

	out.Boards = make([]Board, len(l.Boards))
	for i, board := range l.Boards {
		if board.Topics != nil {
			board.Topics = append([]string(nil), board.Topics...)
		}
		out.Boards[i] = board
	}

	return out
}

func (l Library) index(id BoardID) int {
	for i, board := range l.Boards {
		if board.ID == id {
			return i
		}
	}

	return -1
}

func (l *Library) markActive() {
	for i := range l.Boards {
		l.Boards[i].IsActive = l.Boards[i].ID == l.ActiveBoardID
	}
}
