package application

import (
	"time"

	"github.com/bnema/boards-cli/internal/domain"
)

type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

func (m ImportMode) Valid() bool {
	switch m {
	case ImportModeMerge, ImportModeReplace:
		return true
	default:
		return false
	}
}

// AskCommand targets a board by id, by URL, or by neither (active board).
// Explicit id wins over explicit URL.
type AskCommand struct {
	BoardID  domain.BoardID
	BoardURL string
	Question string
	// Timeout and PollInterval override the executor policy when positive.
	Timeout      time.Duration
	PollInterval time.Duration
	// KeepMaterialContext preserves a material-id/craft-id carried by the
	// board URL instead of dropping it for a board-level query.
	KeepMaterialContext bool
}

type AddBoardCommand struct {
	// ID is optional; when empty it is derived from Name and de-duplicated.
	ID          domain.BoardID
	URL         string
	Name        string
	Description string
	Topics      []string
}

type UpdateBoardCommand struct {
	ID          domain.BoardID
	Name        *string
	Description *string
	Topics      *[]string
	URL         *string
}

type SmartAddCommand struct {
	URL               string
	SinglePass        bool
	AllowDuplicateURL bool
	SkipActivate      bool
	// SummaryPrompt and StructuredPrompt override the built-in discovery
	// questions when non-empty.
	SummaryPrompt    string
	StructuredPrompt string
	Timeout          time.Duration
}

type ExportCommand struct {
	Path        string
	IncludeAuth bool
}

type ImportCommand struct {
	Path   string
	Mode   ImportMode
	DryRun bool
}
