// Package orchestrator drives every user-initiated mutation: it checks
// whether the action is permitted at all, collects the passcode through the
// confirmation exchange, calls the event store, and reconciles the visible
// event set afterwards. No failure escapes an action; every flow ends back
// at idle.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/junhot777-lab/cyber-calender/internal/confirm"
	"github.com/junhot777-lab/cyber-calender/internal/gateway"
	"github.com/junhot777-lab/cyber-calender/internal/session"
)

// State names the stations of a mutation flow.
type State int

const (
	StateIdle State = iota
	StateGateChecked
	StateAwaitingConfirmation
	StateSubmitting
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGateChecked:
		return "gate-checked"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of one mutation flow. Message is what the
// view should show the human; it is empty for every silent outcome
// (cancellation, blank-title abort, discarded result) and for success.
type Result struct {
	State   State
	Message string
}

func (r Result) Silent() bool { return r.Message == "" && r.State != StateDone }

// Gateway is the mutation surface the orchestrator drives.
type Gateway interface {
	List(ctx context.Context, start, end time.Time) ([]gateway.Event, error)
	Create(ctx context.Context, d gateway.Draft, passcode string) (gateway.Event, error)
	Update(ctx context.Context, eventID, title, note, passcode string) (gateway.Event, error)
	Delete(ctx context.Context, eventID, passcode string) error
}

// Sessions is the slice of the session manager the orchestrator reads.
type Sessions interface {
	Current() (session.Session, bool)
	Epoch() uint64
}

// Orchestrator composes the gate checks, the confirmation exchange and the
// gateway. It owns no rendering; the view hands it human input and receives
// the refreshed event set through the sink.
type Orchestrator struct {
	gw        Gateway
	sessions  Sessions
	confirmer confirm.Confirmer

	mu       sync.Mutex
	winStart time.Time
	winEnd   time.Time
	sink     func([]gateway.Event)
}

func New(gw Gateway, sessions Sessions, confirmer confirm.Confirmer, sink func([]gateway.Event)) *Orchestrator {
	return &Orchestrator{gw: gw, sessions: sessions, confirmer: confirmer, sink: sink}
}

// SetWindow records the date range the view currently shows, so successful
// mutations know what to re-fetch.
func (o *Orchestrator) SetWindow(start, end time.Time) {
	o.mu.Lock()
	o.winStart, o.winEnd = start, end
	o.mu.Unlock()
}

// Refresh re-fetches the visible window and hands the events to the sink.
// Reads are public and may run while a confirmation is pending. A refresh
// started under a session is cancelled when that session ends, and a result
// that lands after a login change is dropped without reaching the sink.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	start, end := o.winStart, o.winEnd
	o.mu.Unlock()

	epoch := o.sessions.Epoch()
	if cur, ok := o.sessions.Current(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-cur.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	events, err := o.gw.List(ctx, start, end)
	if o.sessions.Epoch() != epoch {
		return nil
	}
	if err != nil {
		return err
	}
	if o.sink != nil {
		o.sink(events)
	}
	return nil
}

// Create runs the create flow: session gate, blank-title abort, confirmation
// with a note field, then the gateway call.
func (o *Orchestrator) Create(ctx context.Context, title string, startAt, endAt time.Time, allDay bool) Result {
	cur, ok := o.sessions.Current()
	if !ok {
		// The view should never offer create while logged out; this is the backstop.
		return Result{State: StateFailed, Message: "log in before adding events"}
	}

	title = strings.TrimSpace(title)
	if title == "" {
		// Nothing typed: back to idle without wasting a confirmation prompt.
		return Result{State: StateCancelled}
	}

	epoch := o.sessions.Epoch()

	conf, err := o.confirmer.Request(ctx, confirm.Prompt{
		Title:     "새 일정: " + title,
		Footer:    fmt.Sprintf("%s님의 암호를 입력하세요", cur.Name),
		NeedsNote: true,
	})
	if err != nil {
		return o.cancelled(err)
	}
	if o.sessions.Epoch() != epoch {
		// Logged out while the prompt was open: nothing to submit for.
		return Result{State: StateCancelled}
	}

	_, err = o.gw.Create(ctx, gateway.Draft{
		Title:   title,
		StartAt: startAt,
		EndAt:   endAt,
		AllDay:  allDay,
		Note:    conf.Note,
	}, conf.Passcode)

	return o.settle(ctx, epoch, err)
}

// Edit runs the edit flow on an event the view selected. A blank new title
// keeps the current one; a blank note in the confirmation keeps the current
// note.
func (o *Orchestrator) Edit(ctx context.Context, ev gateway.Event, newTitle string) Result {
	cur, refusal := o.ownershipGate(ev)
	if refusal != nil {
		return *refusal
	}

	title := strings.TrimSpace(newTitle)
	if title == "" {
		title = ev.Title
	}

	epoch := o.sessions.Epoch()

	conf, err := o.confirmer.Request(ctx, confirm.Prompt{
		Title:     "일정 수정: " + title,
		Footer:    fmt.Sprintf("%s님의 암호를 입력하세요", cur.Name),
		NeedsNote: true,
	})
	if err != nil {
		return o.cancelled(err)
	}
	if o.sessions.Epoch() != epoch {
		return Result{State: StateCancelled}
	}

	note := conf.Note
	if note == "" {
		note = ev.Note
	}

	_, err = o.gw.Update(ctx, ev.ID, title, note, conf.Passcode)
	return o.settle(ctx, epoch, err)
}

// Delete runs the delete flow. The confirmation carries no note field.
func (o *Orchestrator) Delete(ctx context.Context, ev gateway.Event) Result {
	cur, refusal := o.ownershipGate(ev)
	if refusal != nil {
		return *refusal
	}

	epoch := o.sessions.Epoch()

	conf, err := o.confirmer.Request(ctx, confirm.Prompt{
		Title:     "일정 삭제: " + ev.Title,
		Footer:    fmt.Sprintf("%s님의 암호를 입력하세요", cur.Name),
		NeedsNote: false,
	})
	if err != nil {
		return o.cancelled(err)
	}
	if o.sessions.Epoch() != epoch {
		return Result{State: StateCancelled}
	}

	err = o.gw.Delete(ctx, ev.ID, conf.Passcode)
	return o.settle(ctx, epoch, err)
}

// ownershipGate refuses edit/delete on someone else's event before any
// prompt is shown. A courtesy short-circuit only: the gateway re-checks
// ownership authoritatively.
func (o *Orchestrator) ownershipGate(ev gateway.Event) (session.Session, *Result) {
	cur, ok := o.sessions.Current()
	if !ok {
		return session.Session{}, &Result{State: StateFailed, Message: "log in before changing events"}
	}
	if ev.OwnerUserID != cur.UserID {
		owner := ev.OwnerName
		if owner == "" {
			owner = ev.OwnerUserID
		}
		return session.Session{}, &Result{
			State:   StateFailed,
			Message: fmt.Sprintf("that event belongs to %s", owner),
		}
	}
	return cur, nil
}

// settle converts the gateway outcome into a terminal result, discarding it
// when the session changed mid-flight, and refreshes the window on success.
func (o *Orchestrator) settle(ctx context.Context, epoch uint64, err error) Result {
	if o.sessions.Epoch() != epoch {
		// Logout (or re-login) while the call was in flight: the result no
		// longer belongs to the active session and is dropped, errors
		// included.
		slog.Info("Discarding mutation result from a stale session")
		return Result{State: StateCancelled}
	}

	if err != nil {
		return Result{State: StateFailed, Message: surfaceMessage(err)}
	}

	if rerr := o.Refresh(ctx); rerr != nil {
		slog.Warn("Re-fetch after mutation failed", "error", rerr)
	}
	return Result{State: StateDone}
}

func (o *Orchestrator) cancelled(err error) Result {
	if errors.Is(err, confirm.ErrCancelled) {
		return Result{State: StateCancelled}
	}
	return Result{State: StateFailed, Message: surfaceMessage(err)}
}

// surfaceMessage maps a failure to the single message shown to the human.
func surfaceMessage(err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		if ge.Kind == gateway.KindNotFound {
			return "that event no longer exists"
		}
		return ge.Message
	}
	return "the request failed, please try again"
}
