package application

import (
	"github.com/bnema/boards-cli/internal/domain"
)

type SnapshotVerdict string

const (
	VerdictComposing SnapshotVerdict = "composing"
	VerdictComplete  SnapshotVerdict = "complete"
	VerdictErrored   SnapshotVerdict = "errored"
)

const DefaultStableReads = 2

// StabilityDetector classifies successive conversation snapshots. An answer
// counts as complete once the same non-empty text has been observed for
// stableReads consecutive polls with no in-progress indicator on the last
// one. Intermediate renders can look finished, which is why a single
// snapshot is never trusted.
//
// Text equal to the pre-submit baseline is never a candidate, so content
// left over from earlier exchanges cannot masquerade as the new answer.
type StabilityDetector struct {
	stableReads int
	baseline    string
	lastText    string
	streak      int
}

func NewStabilityDetector(stableReads int, baselineText string) *StabilityDetector {
	if stableReads <= 0 {
		stableReads = DefaultStableReads
	}

	return &StabilityDetector{
		stableReads: stableReads,
		baseline:    domain.NormalizeSpace(baselineText),
	}
}

// Observe folds one snapshot into the detector state and returns the
// verdict for it. Comparison happens on whitespace-normalized text so
// rendering churn does not reset the streak.
func (d *StabilityDetector) Observe(snapshot domain.Snapshot) SnapshotVerdict {
	if snapshot.Errored {
		return VerdictErrored
	}

	text := domain.NormalizeSpace(snapshot.Text)
	if text == "" || (d.baseline != "" && text == d.baseline) {
		d.lastText = ""
		d.streak = 0

		return VerdictComposing
	}

	if text == d.lastText {
		d.streak++
	} else {
		d.lastText = text
		d.streak = 1
	}

	// The indicator gates completion but does not reset the streak: once
	// it clears, an already-settled answer completes on the next read.
	if snapshot.InProgress {
		return VerdictComposing
	}

	if d.streak >= d.stableReads {
		return VerdictComplete
	}

	return VerdictComposing
}
