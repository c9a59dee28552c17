package application

import (
	"time"

	"github.com/bnema/boards-cli/internal/domain"
)

// AskResult is populated even when Ask returns an error for bookkeeping
// only: a non-empty Answer alongside a non-nil error means the exchange
// succeeded but recording board use did not.
type AskResult struct {
	Answer  string
	Board   *domain.Board
	Elapsed time.Duration
	Polls   int
}

type SmartAddStatus string

const (
	SmartAddStatusAdded  SmartAddStatus = "added"
	SmartAddStatusExists SmartAddStatus = "exists"
)

type SmartAddResult struct {
	Status SmartAddStatus
	Board  domain.Board
	// DiscoveryUsed names the path that produced the metadata:
	// single_pass, two_pass, or two_pass_summary_fallback.
	DiscoveryUsed string
	Summary       string
	Structured    string
}

type TopicCount struct {
	Topic string
	Count int
}

type LibraryStats struct {
	TotalBoards       int
	TotalTopics       int
	TotalUseCount     int
	Active            *domain.Board
	MostUsed          *domain.Board
	MostRecentlyUsed  *domain.Board
	LeastRecentlyUsed *domain.Board
	TopTopics         []TopicCount
}

type ExportResult struct {
	Path         string
	ExportedAt   time.Time
	BoardCount   int
	IncludedAuth bool
}

// ImportPlan is the computed diff between a snapshot document and the
// current library. Removals is only populated in replace mode.
type ImportPlan struct {
	Mode          ImportMode
	ExportedAt    time.Time
	Additions     []domain.Board
	Overwrites    []domain.Board
	Removals      []domain.Board
	Unchanged     []domain.Board
	ActiveBoardID domain.BoardID
	Applied       bool
}
