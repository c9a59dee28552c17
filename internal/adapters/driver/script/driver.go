package script

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

// Exchange scripts one open/submit/read cycle. Reads before Submit return
// Baseline; reads after Submit walk Snapshots and stick on the last entry.
// GrowForever instead yields a unique text on every read, which keeps a
// stability detector waiting until its deadline.
type Exchange struct {
	Baseline    domain.Snapshot
	Snapshots   []domain.Snapshot
	GrowForever bool
}

// Driver replays scripted exchanges in place of a real browser session.
// Each Open consumes the next exchange; opening past the end fails, which
// surfaces tests that drive more round trips than they scripted.
type Driver struct {
	mu        sync.Mutex
	exchanges []Exchange
	next      int
	sessions  map[ports.SessionHandle]*replay

	OpenErr   error
	SubmitErr error
	ReadErr   error

	Opened    []string
	Submitted []string
	Closed    []ports.SessionHandle
}

type replay struct {
	exchange  Exchange
	submitted bool
	reads     int
}

var _ ports.SessionDriver = (*Driver)(nil)

func NewDriver(exchanges ...Exchange) *Driver {
	return &Driver{
		exchanges: exchanges,
		sessions:  make(map[ports.SessionHandle]*replay),
	}
}

func (d *Driver) Open(ctx context.Context, boardURL string) (ports.SessionHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.Opened = append(d.Opened, boardURL)
	if d.OpenErr != nil {
		return "", d.OpenErr
	}
	if d.next >= len(d.exchanges) {
		return "", fmt.Errorf("script exhausted after %d exchanges", len(d.exchanges))
	}

	handle := ports.SessionHandle(fmt.Sprintf("script-%d", d.next))
	d.sessions[handle] = &replay{exchange: d.exchanges[d.next]}
	d.next++

	return handle, nil
}

func (d *Driver) Submit(ctx context.Context, handle ports.SessionHandle, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[handle]
	if !ok {
		return errors.New("unknown session handle")
	}

	d.Submitted = append(d.Submitted, text)
	if d.SubmitErr != nil {
		return d.SubmitErr
	}
	session.submitted = true

	return nil
}

func (d *Driver) Read(ctx context.Context, handle ports.SessionHandle) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ReadErr != nil {
		return domain.Snapshot{}, d.ReadErr
	}
	session, ok := d.sessions[handle]
	if !ok {
		return domain.Snapshot{}, errors.New("unknown session handle")
	}
	if !session.submitted {
		return session.exchange.Baseline, nil
	}

	session.reads++
	if session.exchange.GrowForever {
		return domain.Snapshot{Text: fmt.Sprintf("chunk %d", session.reads)}, nil
	}
	if len(session.exchange.Snapshots) == 0 {
		return domain.Snapshot{}, nil
	}

	idx := session.reads - 1
	if idx >= len(session.exchange.Snapshots) {
		idx = len(session.exchange.Snapshots) - 1
	}

	return session.exchange.Snapshots[idx], nil
}

func (d *Driver) Close(handle ports.SessionHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Closed = append(d.Closed, handle)
	delete(d.sessions, handle)

	return nil
}
