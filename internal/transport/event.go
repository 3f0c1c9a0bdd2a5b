package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Poll once the client is closed and its events are drained.
var ErrClosed = errors.New("transport: client closed")

// EventKind classifies a transport notification.
type EventKind string

const (
	EventConnected      EventKind = "connected"
	EventDisconnected   EventKind = "disconnected"
	EventReconnected    EventKind = "reconnected"
	EventClosed         EventKind = "closed"
	EventAsyncError     EventKind = "async_error"
	EventPublishError   EventKind = "publish_error"
	EventProvisionError EventKind = "provision_error"
)

// Event is a connection or delivery notification.
type Event struct {
	Kind    EventKind
	Server  string
	Subject string
	Err     error
	At      time.Time
}

func (e Event) String() string {
	s := string(e.Kind)
	if e.Server != "" {
		s += " server=" + e.Server
	}
	if e.Subject != "" {
		s += " subject=" + e.Subject
	}
	if e.Err != nil {
		s += fmt.Sprintf(" err=%v", e.Err)
	}
	return s
}

// EventQueue is a bounded notification buffer. Push never blocks: when the
// buffer is full the event is counted as dropped.
type EventQueue struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewEventQueue returns a queue buffering up to size events (minimum 1).
func NewEventQueue(size int) *EventQueue {
	if size < 1 {
		size = 1
	}
	return &EventQueue{ch: make(chan Event, size), done: make(chan struct{})}
}

// Push enqueues ev, stamping At if unset. It reports whether the event was kept.
func (q *EventQueue) Push(ev Event) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Poll blocks until an event is available, the queue is closed and drained, or ctx ends.
func (q *EventQueue) Poll(ctx context.Context) (Event, error) {
	select {
	case ev := <-q.ch:
		return ev, nil
	case <-q.done:
		select {
		case ev := <-q.ch:
			return ev, nil
		default:
			return Event{}, ErrClosed
		}
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close stops accepting events. Buffered events remain pollable.
func (q *EventQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Dropped returns how many events were discarded because the buffer was full.
func (q *EventQueue) Dropped() uint64 {
	return q.dropped.Load()
}
