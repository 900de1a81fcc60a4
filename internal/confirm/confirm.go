// Package confirm implements the passcode confirmation exchange that guards
// every mutation: a single-flight, cancelable request for a passcode and an
// optional note, decoupled from the mutation it protects.
package confirm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrCancelled reports that the human dismissed the confirmation. Callers
// must treat it as a silent abort, never as a displayable error.
var ErrCancelled = errors.New("confirmation cancelled")

// Prompt describes what the confirmation surface should display.
type Prompt struct {
	Title     string
	Footer    string
	NeedsNote bool
}

// Confirmation is the ephemeral result of a confirmed prompt. It is consumed
// by exactly one mutation call and never persisted or logged.
type Confirmation struct {
	Passcode string
	Note     string // "" means absent
}

// Confirmer collects a confirmation from the human.
type Confirmer interface {
	Request(ctx context.Context, p Prompt) (Confirmation, error)
}

type outcome struct {
	conf Confirmation
	err  error
}

type pendingRequest struct {
	prompt Prompt
	done   chan outcome
}

// Desk is the single confirmation surface of the client. At most one request
// is outstanding; a newer request supersedes (cancels) a stale one, because
// there is only one modal for the human to look at.
type Desk struct {
	mu       sync.Mutex
	pending  *pendingRequest
	requests chan Prompt
}

func NewDesk() *Desk {
	return &Desk{requests: make(chan Prompt, 1)}
}

// Requests signals each new prompt to the UI side. Capacity one: a superseded
// prompt that was never picked up is simply replaced.
func (d *Desk) Requests() <-chan Prompt {
	return d.requests
}

// Request suspends the caller until the human submits or cancels, or ctx
// ends. The protocol holds no memory: a rejected passcode means the caller
// starts a fresh Request.
func (d *Desk) Request(ctx context.Context, p Prompt) (Confirmation, error) {
	pr := &pendingRequest{prompt: p, done: make(chan outcome, 1)}

	d.mu.Lock()
	if old := d.pending; old != nil {
		old.done <- outcome{err: ErrCancelled}
	}
	d.pending = pr
	d.mu.Unlock()

	// Replace any stale prompt the UI has not consumed yet.
	select {
	case <-d.requests:
	default:
	}
	d.requests <- p

	select {
	case o := <-pr.done:
		return o.conf, o.err
	case <-ctx.Done():
		d.mu.Lock()
		if d.pending == pr {
			d.pending = nil
		}
		d.mu.Unlock()
		return Confirmation{}, ErrCancelled
	}
}

// Pending returns the prompt currently awaiting the human, if any.
func (d *Desk) Pending() (Prompt, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Prompt{}, false
	}
	return d.pending.prompt, true
}

// Submit resolves the pending request. The passcode is trimmed but forwarded
// even when empty (the gateway judges emptiness); the note is trimmed and
// normalized to absent when blank. Returns false if nothing was pending.
func (d *Desk) Submit(passcode, note string) bool {
	pr := d.take()
	if pr == nil {
		return false
	}
	pr.done <- outcome{conf: Confirmation{
		Passcode: strings.TrimSpace(passcode),
		Note:     strings.TrimSpace(note),
	}}
	return true
}

// Cancel dismisses the pending request. Returns false if nothing was pending.
func (d *Desk) Cancel() bool {
	pr := d.take()
	if pr == nil {
		return false
	}
	pr.done <- outcome{err: ErrCancelled}
	return true
}

func (d *Desk) take() *pendingRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	pr := d.pending
	d.pending = nil
	return pr
}
