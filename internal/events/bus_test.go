package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type capturingSubscriber struct {
	ch chan Event
}

func (c *capturingSubscriber) Handle(ev Event) {
	c.ch <- ev
}

func TestEmitFansOutToEverySubscriber(t *testing.T) {
	a := &capturingSubscriber{ch: make(chan Event, 1)}
	b := &capturingSubscriber{ch: make(chan Event, 1)}
	bus := New(4, a, b)

	bus.Emit(Event{Kind: Login, Username: "alice"})

	select {
	case ev := <-a.ch:
		assert.Equal(t, Login, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("subscriber a never received the event")
	}
	select {
	case ev := <-b.ch:
		assert.Equal(t, Login, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("subscriber b never received the event")
	}
}

func TestEmitDropsOnFullQueueWithoutBlocking(t *testing.T) {
	blocked := &capturingSubscriber{ch: make(chan Event)} // unbuffered, nobody reads it
	bus := New(1, blocked)

	done := make(chan struct{})
	go func() {
		// First Emit fills the depth-1 queue (the drain goroutine may or may
		// not have pulled it yet); the second must still return immediately
		// rather than block on a full queue.
		bus.Emit(Event{Kind: Login})
		bus.Emit(Event{Kind: ClientError})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full subscriber queue")
	}
}

func TestEmitWithNoSubscribersIsNoop(t *testing.T) {
	bus := New(4)
	assert.NotPanics(t, func() { bus.Emit(Event{Kind: Login}) })
}
