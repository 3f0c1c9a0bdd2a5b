package natsbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
)

// ackTracker holds the futures of asynchronous JetStream publishes until
// Flush collects them. Resolved futures are swept on every add, so a client
// that never flushes keeps only the unresolved ones; the first rejection seen
// while sweeping is kept for the next Flush.
type ackTracker struct {
	mu      sync.Mutex
	pending []jetstream.PubAckFuture
	err     error
}

func (t *ackTracker) add(f jetstream.PubAckFuture) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep()
	t.pending = append(t.pending, f)
}

// sweep drops resolved futures without blocking. Callers hold mu.
func (t *ackTracker) sweep() {
	kept := t.pending[:0]
	for _, f := range t.pending {
		select {
		case <-f.Ok():
		case err := <-f.Err():
			t.record(f, err)
		default:
			kept = append(kept, f)
		}
	}
	clear(t.pending[len(kept):])
	t.pending = kept
}

func (t *ackTracker) record(f jetstream.PubAckFuture, err error) {
	if t.err != nil {
		return
	}
	subject := ""
	if msg := f.Msg(); msg != nil {
		subject = msg.Subject
	}
	t.err = fmt.Errorf("publish to %s not acknowledged: %w", subject, err)
}

// wait blocks until every tracked future resolves or ctx ends, then returns
// and clears the first rejection.
func (t *ackTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.pending) > 0 {
		f := t.pending[0]
		select {
		case <-f.Ok():
		case err := <-f.Err():
			t.record(f, err)
		case <-ctx.Done():
			return fmt.Errorf("waiting for publish acknowledgements: %w", ctx.Err())
		}
		t.pending[0] = nil
		t.pending = t.pending[1:]
	}

	err := t.err
	t.err = nil
	return err
}
