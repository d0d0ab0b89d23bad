package ui

import (
	"chatapp/domain/event"
	"context"
	"sync"
)

// outbox queues the events produced by the model and forwards them to the
// coordinator in order, from its own goroutine.
// The queue is unbounded: Update never waits on the coordinator, which may
// itself be waiting for the model to read a snapshot.
type outbox struct {
	mu      sync.Mutex
	pending []event.InterfaceOut
	wake    chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) push(evt event.InterfaceOut) {
	o.mu.Lock()
	o.pending = append(o.pending, evt)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []event.InterfaceOut {
	o.mu.Lock()
	defer o.mu.Unlock()
	pending := o.pending
	o.pending = nil
	return pending
}

// forward sends queued events to out until ctx is done.
// Events still queued at that point are dropped.
func (o *outbox) forward(ctx context.Context, out chan<- event.InterfaceOut) {
	for {
		for _, evt := range o.drain() {
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-o.wake:
		case <-ctx.Done():
			return
		}
	}
}
