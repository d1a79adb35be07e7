package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdepot/gatesftp/internal/events"
)

type fakeCloser struct {
	closed bool
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return nil
}

type recordingSubscriber struct {
	mu chan events.Event
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{mu: make(chan events.Event, 16)}
}

func (r *recordingSubscriber) Handle(ev events.Event) {
	r.mu <- ev
}

func (r *recordingSubscriber) next(t *testing.T) events.Event {
	t.Helper()
	select {
	case ev := <-r.mu:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestRegisterAndEnd(t *testing.T) {
	sub := newRecordingSubscriber()
	bus := events.New(4, sub)
	mgr := New(bus)

	closer := &fakeCloser{}
	mgr.Register("alice", closer)
	assert.Equal(t, []string{"alice"}, mgr.ActiveUsers())

	mgr.End("alice", "client hung up")
	assert.Empty(t, mgr.ActiveUsers())

	ev := sub.next(t)
	assert.Equal(t, events.ClientDisconnected, ev.Kind)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, "client hung up", ev.Cause)
	assert.False(t, closer.closed, "End tears down tracking only, it must not close the connection")
}

func TestEndUntrackedUserEmitsNothing(t *testing.T) {
	sub := newRecordingSubscriber()
	bus := events.New(4, sub)
	mgr := New(bus)

	mgr.End("ghost", "noop")

	select {
	case ev := <-sub.mu:
		t.Fatalf("unexpected event for untracked user: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestForceDisconnectClosesAndUntracks(t *testing.T) {
	mgr := New(nil)
	closer := &fakeCloser{}
	mgr.Register("bob", closer)

	mgr.ForceDisconnect("bob")

	assert.True(t, closer.closed)
	assert.Empty(t, mgr.ActiveUsers())
}

func TestForceDisconnectUntrackedUserIsNoop(t *testing.T) {
	mgr := New(nil)
	assert.NotPanics(t, func() { mgr.ForceDisconnect("nobody") })
}

func TestDisconnectAllClosesEveryone(t *testing.T) {
	mgr := New(nil)
	a, b := &fakeCloser{}, &fakeCloser{}
	mgr.Register("alice", a)
	mgr.Register("bob", b)

	mgr.DisconnectAll()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Empty(t, mgr.ActiveUsers())
}

func TestRegisterReplacesExistingSession(t *testing.T) {
	mgr := New(nil)
	first := &fakeCloser{}
	second := &fakeCloser{}

	mgr.Register("alice", first)
	mgr.Register("alice", second)

	require.Len(t, mgr.ActiveUsers(), 1)
	mgr.ForceDisconnect("alice")
	assert.False(t, first.closed, "replaced session's original closer must not be invoked")
	assert.True(t, second.closed)
}

func TestRecordActivityOnUntrackedUserIsNoop(t *testing.T) {
	mgr := New(nil)
	assert.NotPanics(t, func() { mgr.RecordActivity("nobody") })
}
