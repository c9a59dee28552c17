package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

const (
	DefaultQueryTimeout = 120 * time.Second
	DefaultPollInterval = 800 * time.Millisecond
)

// QueryPolicy holds the poll-loop knobs. Zero fields fall back to the
// package defaults.
type QueryPolicy struct {
	Timeout      time.Duration
	PollInterval time.Duration
	StableReads  int
}

func (p QueryPolicy) withDefaults() QueryPolicy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultQueryTimeout
	}
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.StableReads <= 0 {
		p.StableReads = DefaultStableReads
	}

	return p
}

// QueryExecutor runs one question/answer exchange against a board. It is
// single-shot per call: any retry is the caller's decision.
type QueryExecutor struct {
	repo    ports.LibraryRepository
	states  ports.AuthStateStore
	driver  ports.SessionDriver
	clock   ports.Clock
	sleeper ports.Sleeper
	policy  QueryPolicy
}

func NewQueryExecutor(
	repo ports.LibraryRepository,
	states ports.AuthStateStore,
	driver ports.SessionDriver,
	clock ports.Clock,
	sleeper ports.Sleeper,
	policy QueryPolicy,
) *QueryExecutor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if sleeper == nil {
		sleeper = ports.SystemSleeper{}
	}

	return &QueryExecutor{
		repo:    repo,
		states:  states,
		driver:  driver,
		clock:   clock,
		sleeper: sleeper,
		policy:  policy.withDefaults(),
	}
}

// Ask submits the question once and polls until the answer stabilizes, the
// remote reports a failure, or the timeout expires. On success against a
// registered board it also bumps last-used bookkeeping; if only that write
// fails, the populated result is returned together with the error.
func (e *QueryExecutor) Ask(ctx context.Context, cmd AskCommand) (AskResult, error) {
	question := strings.TrimSpace(cmd.Question)
	if question == "" {
		return AskResult{}, errors.New("question is empty")
	}

	state, err := e.states.Load(ctx)
	if err != nil {
		return AskResult{}, fmt.Errorf("load auth state: %w", err)
	}
	if !state.CanQuery() {
		return AskResult{}, fmt.Errorf("auth status is %s: %w", state.Status, domain.ErrAuthRequired)
	}

	target, err := e.resolveTarget(ctx, cmd)
	if err != nil {
		return AskResult{}, err
	}

	boardURL := target.url
	if !cmd.KeepMaterialContext {
		boardURL = domain.StripContextIDs(boardURL)
	}

	policy := e.policy
	if cmd.Timeout > 0 {
		policy.Timeout = cmd.Timeout
	}
	if cmd.PollInterval > 0 {
		policy.PollInterval = cmd.PollInterval
	}

	answer, stats, err := e.exchange(ctx, boardURL, target.ref, question, policy)
	if err != nil {
		return AskResult{}, err
	}

	result := AskResult{
		Answer:  answer,
		Board:   target.board,
		Elapsed: stats.elapsed,
		Polls:   stats.polls,
	}

	if target.board != nil {
		recorded, err := e.recordUse(ctx, target.board.ID)
		if err != nil {
			return result, fmt.Errorf("record board use: %w", err)
		}
		result.Board = &recorded
	}

	return result, nil
}

type resolvedTarget struct {
	url string
	ref string
	// board is nil when the caller supplied a URL that is not registered
	// in the library; such exchanges skip use bookkeeping.
	board *domain.Board
}

func (e *QueryExecutor) resolveTarget(ctx context.Context, cmd AskCommand) (resolvedTarget, error) {
	lib, err := e.repo.Load(ctx)
	if err != nil {
		return resolvedTarget{}, fmt.Errorf("load library: %w", err)
	}

	switch {
	case strings.TrimSpace(string(cmd.BoardID)) != "":
		board, ok := lib.Get(cmd.BoardID)
		if !ok {
			return resolvedTarget{}, fmt.Errorf("board id %q: %w", cmd.BoardID, domain.ErrBoardResolution)
		}

		return resolvedTarget{url: board.URL, ref: string(board.ID), board: &board}, nil

	case strings.TrimSpace(cmd.BoardURL) != "":
		if _, err := domain.NormalizeBoardURL(cmd.BoardURL); err != nil {
			return resolvedTarget{}, fmt.Errorf("board url %q: %v: %w", cmd.BoardURL, err, domain.ErrBoardResolution)
		}
		if board, ok := lib.FindByURL(cmd.BoardURL); ok {
			return resolvedTarget{url: cmd.BoardURL, ref: string(board.ID), board: &board}, nil
		}

		return resolvedTarget{url: cmd.BoardURL, ref: cmd.BoardURL}, nil

	default:
		board, ok := lib.ActiveBoard()
		if !ok {
			return resolvedTarget{}, domain.ErrNoActiveBoard
		}

		return resolvedTarget{url: board.URL, ref: string(board.ID), board: &board}, nil
	}
}

type attemptStats struct {
	elapsed time.Duration
	polls   int
}

func (e *QueryExecutor) exchange(ctx context.Context, boardURL, ref, question string, policy QueryPolicy) (string, attemptStats, error) {
	var stats attemptStats

	handle, err := e.driver.Open(ctx, boardURL)
	if err != nil {
		return "", stats, fmt.Errorf("open board %s: %w", ref, err)
	}
	// The session is released on every path, including timeouts.
	defer func() { _ = e.driver.Close(handle) }()

	baseline, err := e.driver.Read(ctx, handle)
	if err != nil {
		return "", stats, fmt.Errorf("read baseline snapshot: %w", err)
	}

	if err := e.driver.Submit(ctx, handle, question); err != nil {
		return "", stats, fmt.Errorf("submit question: %w", err)
	}

	detector := NewStabilityDetector(policy.StableReads, baseline.Text)
	started := e.clock.Now()
	deadline := started.Add(policy.Timeout)

	var last domain.Snapshot
	for e.clock.Now().Before(deadline) {
		snapshot, err := e.driver.Read(ctx, handle)
		if err != nil {
			return "", stats, fmt.Errorf("read answer snapshot: %w", err)
		}
		stats.polls++
		last = snapshot

		switch detector.Observe(snapshot) {
		case VerdictErrored:
			return "", stats, &domain.RemoteFailureError{BoardRef: ref, Snapshot: snapshot}
		case VerdictComplete:
			stats.elapsed = e.clock.Now().Sub(started)

			return strings.TrimSpace(snapshot.Text), stats, nil
		}

		if err := e.sleeper.Sleep(ctx, policy.PollInterval); err != nil {
			return "", stats, err
		}
	}

	stats.elapsed = e.clock.Now().Sub(started)

	return "", stats, &domain.QueryTimeoutError{BoardRef: ref, Timeout: policy.Timeout, LastSnapshot: last}
}

func (e *QueryExecutor) recordUse(ctx context.Context, id domain.BoardID) (domain.Board, error) {
	lib, err := e.repo.Load(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("load library: %w", err)
	}

	board, ok := lib.Get(id)
	if !ok {
		return domain.Board{}, fmt.Errorf("board %s: %w", id, domain.ErrBoardNotFound)
	}

	board.RecordUse(e.clock.Now())
	if err := lib.Replace(board); err != nil {
		return domain.Board{}, fmt.Errorf("replace board %s: %w", id, err)
	}
	if err := e.repo.Save(ctx, lib); err != nil {
		return domain.Board{}, fmt.Errorf("save library: %w", err)
	}

	return board, nil
}
