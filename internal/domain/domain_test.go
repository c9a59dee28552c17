package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBoard(id BoardID) Board {
	return Board{
		ID:          id,
		URL:         "https://boards.example.com/boards/" + string(id),
		Name:        "Board " + string(id),
		Description: "Description for " + string(id),
		Topics:      []string{"go", "testing"},
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLibraryFirstAddBecomesActive(t *testing.T) {
	var lib Library

	require.NoError(t, lib.Add(testBoard("alpha")))
	require.NoError(t, lib.Add(testBoard("beta")))

	assert.Equal(t, BoardID("alpha"), lib.ActiveBoardID)

	active, ok := lib.ActiveBoard()
	require.True(t, ok)
	assert.Equal(t, BoardID("alpha"), active.ID)
	assert.True(t, active.IsActive)

	beta, ok := lib.Get("beta")
	require.True(t, ok)
	assert.False(t, beta.IsActive)
}

func TestLibraryAddDuplicate(t *testing.T) {
	var lib Library

	require.NoError(t, lib.Add(testBoard("alpha")))
	assert.ErrorIs(t, lib.Add(testBoard("alpha")), ErrDuplicateBoard)
}

func TestLibraryActivateMovesSingleFlag(t *testing.T) {
	var lib Library
	require.NoError(t, lib.Add(testBoard("x")))
	require.NoError(t, lib.Add(testBoard("y")))

	require.NoError(t, lib.Activate("x"))
	require.NoError(t, lib.Activate("y"))

	activeCount := 0
	for _, board := range lib.Boards {
		if board.IsActive {
			activeCount++
			assert.Equal(t, BoardID("y"), board.ID)
		}
	}
	assert.Equal(t, 1, activeCount)

	assert.ErrorIs(t, lib.Activate("missing"), ErrBoardNotFound)
}

func TestLibraryRemoveActiveClearsPointer(t *testing.T) {
	var lib Library
	require.NoError(t, lib.Add(testBoard("alpha")))
	require.NoError(t, lib.Add(testBoard("beta")))
	require.NoError(t, lib.Activate("beta"))

	require.NoError(t, lib.Remove("beta"))

	assert.Equal(t, BoardID(""), lib.ActiveBoardID)
	_, ok := lib.ActiveBoard()
	assert.False(t, ok)

	assert.ErrorIs(t, lib.Remove("beta"), ErrBoardNotFound)
	assert.Len(t, lib.Boards, 1)
}

func TestLibraryEnsureUniqueID(t *testing.T) {
	var lib Library
	require.NoError(t, lib.Add(testBoard("rust-notes")))
	require.NoError(t, lib.Add(testBoard("rust-notes-2")))

	assert.Equal(t, BoardID("rust-notes-3"), lib.EnsureUniqueID("rust-notes"))
	assert.Equal(t, BoardID("fresh"), lib.EnsureUniqueID("fresh"))
	assert.Equal(t, BoardID("board"), lib.EnsureUniqueID(" "))
}

func TestLibraryFindByURLIgnoresContextIDs(t *testing.T) {
	var lib Library
	board := testBoard("alpha")
	board.URL = "https://boards.example.com/boards/alpha?material-id=m1"
	require.NoError(t, lib.Add(board))

	found, ok := lib.FindByURL("https://Boards.Example.com/boards/alpha/")
	require.True(t, ok)
	assert.Equal(t, BoardID("alpha"), found.ID)

	_, ok = lib.FindByURL("https://boards.example.com/boards/other")
	assert.False(t, ok)
}

func TestLibraryNormalizeClearsDanglingActivePointer(t *testing.T) {
	lib := Library{
		Boards:        []Board{testBoard("alpha")},
		ActiveBoardID: "gone",
	}

	lib.Normalize()

	assert.Equal(t, BoardID(""), lib.ActiveBoardID)
	assert.False(t, lib.Boards[0].IsActive)
}

func TestBoardMatchesQuery(t *testing.T) {
	board := Board{
		Name:        "Rust Notes",
		Description: "Systems programming research",
		Topics:      []string{"Ownership", "Async"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "name substring", query: "rust", want: true},
		{name: "description substring", query: "SYSTEMS", want: true},
		{name: "topic substring", query: "async", want: true},
		{name: "no match", query: "gardening", want: false},
		{name: "blank query", query: "  ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, board.MatchesQuery(tt.query))
		})
	}
}

func TestBoardNormalizeTopics(t *testing.T) {
	board := Board{Topics: []string{" Go ", "go", "", "Async", "async "}}

	board.NormalizeTopics()

	assert.Equal(t, []string{"Go", "Async"}, board.Topics)
}

func TestNormalizeBoardURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "strips context id and fragment",
			raw:  "https://boards.example.com/boards/abc?material-id=m1&view=grid#section",
			want: "https://boards.example.com/boards/abc?view=grid",
		},
		{
			name: "lowercases host and trims trailing slash",
			raw:  "HTTPS://Boards.Example.COM/boards/abc/",
			want: "https://boards.example.com/boards/abc",
		},
		{name: "rejects empty", raw: "  ", wantErr: true},
		{name: "rejects bare path", raw: "/boards/abc", wantErr: true},
		{name: "rejects other scheme", raw: "ftp://example.com/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBoardURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripContextIDs(t *testing.T) {
	raw := "https://boards.example.com/boards/abc?material-id=m1&craft-id=c2&view=grid#x"

	assert.Equal(t, "https://boards.example.com/boards/abc?view=grid", StripContextIDs(raw))
	assert.True(t, HasContextID(raw))
	assert.False(t, HasContextID("https://boards.example.com/boards/abc?view=grid"))
}

func TestBoardURLSuffix(t *testing.T) {
	assert.Equal(t, "abcdefgh", BoardURLSuffix("https://boards.example.com/boards/abcdefgh1234/"))
	assert.Equal(t, "abc", BoardURLSuffix("https://boards.example.com/boards/abc"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces and case", in: "Rust Notes 2026", want: "rust-notes-2026"},
		{name: "punctuation runs", in: "a//b--c!!", want: "a-b-c"},
		{name: "empty input", in: " \t", want: "board"},
		{name: "non-latin only", in: "研究笔记", want: "board"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestParseAuthStatus(t *testing.T) {
	status, err := ParseAuthStatus("valid")
	require.NoError(t, err)
	assert.Equal(t, AuthStatusValid, status)
	assert.True(t, AuthState{Status: status}.CanQuery())

	status, err = ParseAuthStatus("")
	require.NoError(t, err)
	assert.Equal(t, AuthStatusUnauthenticated, status)

	_, err = ParseAuthStatus("sideways")
	require.Error(t, err)

	assert.False(t, AuthState{Status: AuthStatusExpired}.CanQuery())
}

func TestQueryTimeoutErrorMessage(t *testing.T) {
	err := &QueryTimeoutError{
		BoardRef: "alpha",
		Timeout:  2 * time.Minute,
		LastSnapshot: Snapshot{
			Text: "partial   answer\nstill streaming",
		},
	}

	assert.ErrorIs(t, err, ErrAnswerTimeout)
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "partial answer still streaming")

	bare := &QueryTimeoutError{BoardRef: "alpha", Timeout: time.Second}
	assert.NotContains(t, bare.Error(), "last snapshot")
}

func TestRemoteFailureErrorMessage(t *testing.T) {
	err := &RemoteFailureError{
		BoardRef: "alpha",
		Snapshot: Snapshot{Text: "Something went wrong", Errored: true},
	}

	assert.ErrorIs(t, err, ErrRemoteFailure)
	assert.Contains(t, err.Error(), "Something went wrong")
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a \n\tb   c "))
	assert.Equal(t, "", NormalizeSpace("   "))
}
