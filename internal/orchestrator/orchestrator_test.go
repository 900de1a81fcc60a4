package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/junhot777-lab/cyber-calender/internal/confirm"
	"github.com/junhot777-lab/cyber-calender/internal/gateway"
	"github.com/junhot777-lab/cyber-calender/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway records every call and answers from canned data.
type fakeGateway struct {
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	events    []gateway.Event
	mutateErr error
	// onMutate runs inside the mutation call, before it returns; used to
	// simulate a logout while the call is in flight. onList does the same
	// for reads and may block on the context.
	onMutate func()
	onList   func(ctx context.Context)
}

func (f *fakeGateway) List(ctx context.Context, start, end time.Time) ([]gateway.Event, error) {
	f.listCalls++
	if f.onList != nil {
		f.onList(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.events, nil
}

func (f *fakeGateway) Create(ctx context.Context, d gateway.Draft, passcode string) (gateway.Event, error) {
	f.createCalls++
	if f.onMutate != nil {
		f.onMutate()
	}
	if f.mutateErr != nil {
		return gateway.Event{}, f.mutateErr
	}
	ev := gateway.Event{ID: "new", Title: d.Title, StartAt: d.StartAt, EndAt: d.EndAt, Note: d.Note}
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeGateway) Update(ctx context.Context, eventID, title, note, passcode string) (gateway.Event, error) {
	f.updateCalls++
	if f.onMutate != nil {
		f.onMutate()
	}
	if f.mutateErr != nil {
		return gateway.Event{}, f.mutateErr
	}
	return gateway.Event{ID: eventID, Title: title, Note: note}, nil
}

func (f *fakeGateway) Delete(ctx context.Context, eventID, passcode string) error {
	f.deleteCalls++
	if f.onMutate != nil {
		f.onMutate()
	}
	return f.mutateErr
}

func (f *fakeGateway) mutations() int {
	return f.createCalls + f.updateCalls + f.deleteCalls
}

// fakeSessions is a hand-driven session manager.
type fakeSessions struct {
	cur   session.Session
	live  bool
	epoch uint64
}

func (f *fakeSessions) Current() (session.Session, bool) { return f.cur, f.live }
func (f *fakeSessions) Epoch() uint64                    { return f.epoch }

func (f *fakeSessions) logout() {
	f.live = false
	f.cur = session.Session{}
	f.epoch++
}

func loggedInAs(id, name string) *fakeSessions {
	return &fakeSessions{cur: session.Session{UserID: id, Name: name, Token: "tok"}, live: true, epoch: 1}
}

// scriptedConfirmer answers Request without a human.
type scriptedConfirmer struct {
	calls    int
	conf     confirm.Confirmation
	err      error
	onPrompt func(confirm.Prompt)
}

func (s *scriptedConfirmer) Request(ctx context.Context, p confirm.Prompt) (confirm.Confirmation, error) {
	s.calls++
	if s.onPrompt != nil {
		s.onPrompt(p)
	}
	return s.conf, s.err
}

func window() (time.Time, time.Time) {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
}

func TestCreateHappyPathRefreshesWindow(t *testing.T) {
	gw := &fakeGateway{}
	sess := loggedInAs("hj", "조현준")
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424", Note: "강남"}}

	var seen []gateway.Event
	o := New(gw, sess, cf, func(evs []gateway.Event) { seen = evs })
	start, end := window()
	o.SetWindow(start, end)

	res := o.Create(context.Background(), "저녁 약속", start.Add(24*time.Hour), start.Add(26*time.Hour), false)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, "", res.Message)
	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, 1, gw.listCalls, "success triggers a re-fetch of the visible range")
	require.Len(t, seen, 1)
	assert.Equal(t, "저녁 약속", seen[0].Title)
}

func TestCreateRequiresSession(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{}
	o := New(gw, &fakeSessions{}, cf, nil)

	res := o.Create(context.Background(), "저녁", time.Now(), time.Now(), false)

	assert.Equal(t, StateFailed, res.State)
	assert.NotEmpty(t, res.Message)
	assert.Equal(t, 0, cf.calls, "no prompt for a logged-out user")
	assert.Equal(t, 0, gw.mutations())
}

func TestCreateBlankTitleAbortsSilently(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	res := o.Create(context.Background(), "   ", time.Now(), time.Now(), false)

	assert.True(t, res.Silent())
	assert.Equal(t, 0, cf.calls, "no confirmation prompt is wasted")
	assert.Equal(t, 0, gw.mutations())
	assert.Equal(t, 0, gw.listCalls)
}

func TestEditRefusesForeignEventNamingOwner(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	bobs := gateway.Event{ID: "e1", Title: "회식", OwnerUserID: "sk", OwnerName: "김수겸"}
	res := o.Edit(context.Background(), bobs, "다른 제목")

	assert.Equal(t, StateFailed, res.State)
	assert.Contains(t, res.Message, "김수겸", "refusal names the actual owner")
	assert.Equal(t, 0, cf.calls, "no confirmation prompt is shown")
	assert.Equal(t, 0, gw.mutations(), "no network call is made")
}

func TestDeleteRefusesForeignEvent(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{}
	o := New(gw, loggedInAs("sk", "김수겸"), cf, nil)

	res := o.Delete(context.Background(), gateway.Event{ID: "e2", OwnerUserID: "jh", OwnerName: "장준호"})

	assert.Equal(t, StateFailed, res.State)
	assert.Contains(t, res.Message, "장준호")
	assert.Equal(t, 0, gw.deleteCalls)
}

func TestCancelledConfirmationIsSilentAndMakesNoCall(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{err: confirm.ErrCancelled}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	res := o.Create(context.Background(), "저녁", time.Now(), time.Now().Add(time.Hour), false)
	assert.Equal(t, StateCancelled, res.State)
	assert.True(t, res.Silent())

	res = o.Delete(context.Background(), gateway.Event{ID: "e1", OwnerUserID: "hj"})
	assert.Equal(t, StateCancelled, res.State)
	assert.True(t, res.Silent())

	assert.Equal(t, 0, gw.mutations())
	assert.Equal(t, 0, gw.listCalls)
}

func TestWrongPasscodeSurfacesGenericAuthMessage(t *testing.T) {
	gw := &fakeGateway{mutateErr: &gateway.Error{Kind: gateway.KindAuth, Message: "invalid user or passcode"}}
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0000"}}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	res := o.Create(context.Background(), "저녁", time.Now(), time.Now().Add(time.Hour), false)

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "invalid user or passcode", res.Message)
	assert.Equal(t, 0, gw.listCalls, "no re-fetch after a failed mutation")
}

func TestVanishedEventSurfacesNoLongerExists(t *testing.T) {
	gw := &fakeGateway{mutateErr: &gateway.Error{Kind: gateway.KindNotFound, Message: "event not found"}}
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424"}}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	res := o.Delete(context.Background(), gateway.Event{ID: "gone", OwnerUserID: "hj"})

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, "that event no longer exists", res.Message)
}

func TestLogoutMidFlightDiscardsResult(t *testing.T) {
	sess := loggedInAs("hj", "조현준")
	gw := &fakeGateway{}
	gw.onMutate = func() { sess.logout() }
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424"}}
	o := New(gw, sess, cf, nil)

	res := o.Create(context.Background(), "저녁", time.Now(), time.Now().Add(time.Hour), false)

	assert.Equal(t, StateCancelled, res.State)
	assert.True(t, res.Silent(), "a result for a dead session is dropped, not surfaced")
	assert.Equal(t, 0, gw.listCalls, "no re-fetch for a discarded result")
}

func TestLogoutMidFlightSwallowsErrorsToo(t *testing.T) {
	sess := loggedInAs("hj", "조현준")
	gw := &fakeGateway{mutateErr: &gateway.Error{Kind: gateway.KindAuth, Message: "invalid or expired token"}}
	gw.onMutate = func() { sess.logout() }
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424"}}
	o := New(gw, sess, cf, nil)

	res := o.Delete(context.Background(), gateway.Event{ID: "e1", OwnerUserID: "hj"})

	assert.Equal(t, StateCancelled, res.State)
	assert.True(t, res.Silent(), "the stale call's auth error must not be surfaced")
}

// loginFunc adapts a function to session.Authenticator.
type loginFunc func(ctx context.Context, userID, passcode string) (gateway.LoginResult, error)

func (f loginFunc) Login(ctx context.Context, userID, passcode string) (gateway.LoginResult, error) {
	return f(ctx, userID, passcode)
}

func TestLogoutCancelsInFlightRefresh(t *testing.T) {
	mgr := session.NewManager(loginFunc(func(context.Context, string, string) (gateway.LoginResult, error) {
		return gateway.LoginResult{Token: "tok", User: gateway.User{ID: "hj", Name: "조현준"}}, nil
	}), nil)
	_, err := mgr.Login(context.Background(), "hj", "0424")
	require.NoError(t, err)

	started := make(chan struct{})
	gw := &fakeGateway{}
	gw.onList = func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}

	var sunk int
	o := New(gw, mgr, &scriptedConfirmer{}, func([]gateway.Event) { sunk++ })
	start, end := window()
	o.SetWindow(start, end)

	errCh := make(chan error, 1)
	go func() { errCh <- o.Refresh(context.Background()) }()

	<-started
	mgr.Logout()

	assert.NoError(t, <-errCh, "a refresh killed by logout is dropped, not surfaced")
	assert.Equal(t, 0, sunk, "stale events never reach the sink")
}

func TestLogoutDuringConfirmationSkipsDispatch(t *testing.T) {
	sess := loggedInAs("hj", "조현준")
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424"}}
	cf.onPrompt = func(confirm.Prompt) { sess.logout() }
	gw := &fakeGateway{}
	o := New(gw, sess, cf, nil)

	res := o.Create(context.Background(), "저녁", time.Now(), time.Now().Add(time.Hour), false)

	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, 0, gw.mutations(), "nothing is dispatched for a dead session")
}

func TestEditDefaultsBlankTitleAndNote(t *testing.T) {
	gw := &fakeGateway{}
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424", Note: ""}}
	o := New(gw, loggedInAs("hj", "조현준"), cf, nil)

	existing := gateway.Event{ID: "e1", Title: "원래 제목", Note: "원래 메모", OwnerUserID: "hj"}

	// Capture what reaches the gateway.
	var gotTitle, gotNote string
	wrapped := &captureGateway{fakeGateway: gw, onUpdate: func(title, note string) {
		gotTitle, gotNote = title, note
	}}
	o = New(wrapped, loggedInAs("hj", "조현준"), cf, nil)

	res := o.Edit(context.Background(), existing, "   ")
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, "원래 제목", gotTitle, "blank input keeps the current title")
	assert.Equal(t, "원래 메모", gotNote, "blank note keeps the current note")
}

type captureGateway struct {
	*fakeGateway
	onUpdate func(title, note string)
}

func (c *captureGateway) Update(ctx context.Context, eventID, title, note, passcode string) (gateway.Event, error) {
	if c.onUpdate != nil {
		c.onUpdate(title, note)
	}
	return c.fakeGateway.Update(ctx, eventID, title, note, passcode)
}

func TestDeletePromptCarriesNoNoteField(t *testing.T) {
	var prompt confirm.Prompt
	cf := &scriptedConfirmer{conf: confirm.Confirmation{Passcode: "0424"}}
	cf.onPrompt = func(p confirm.Prompt) { prompt = p }
	o := New(&fakeGateway{}, loggedInAs("hj", "조현준"), cf, nil)

	o.Delete(context.Background(), gateway.Event{ID: "e1", OwnerUserID: "hj"})
	assert.False(t, prompt.NeedsNote)

	o.Create(context.Background(), "저녁", time.Now(), time.Now().Add(time.Hour), false)
	assert.True(t, prompt.NeedsNote, "create prompt carries the note field")
}
