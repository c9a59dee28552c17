package domain

import (
	"regexp"
	"strings"
)

// Snapshot is one read of a board conversation surface.
type Snapshot struct {
	Text       string
	InProgress bool
	Errored    bool
}

func (s Snapshot) Empty() bool {
	return strings.TrimSpace(s.Text) == ""
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeSpace collapses whitespace runs so rendered text compares
// stably across polls despite layout churn.
func NormalizeSpace(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
