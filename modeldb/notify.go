package modeldb

import (
	"log/slog"
	"sync"
)

// emission is one scheduled signal delivery.
type emission struct {
	sig  *Signal
	args ChangedArgs
}

// notifier is the outbound notification queue and its delivery loop.
//
// The queue is unbounded so a commit can always enqueue its full
// fan-out without blocking the mutating goroutine. Emissions are
// delivered strictly in enqueue order by a single goroutine, which
// preserves global commit order and, within a commit, mutation order
// then child-to-root bubble order.
//
// Thread-safety is provided for enqueuing from the committing goroutine
// while the run loop dequeues; Drain may be called from any goroutine.
type notifier struct {
	mu         sync.Mutex
	cond       *sync.Cond // broadcast when the queue drains
	queue      []emission
	delivering bool
	closed     bool
	wake       chan struct{} // buffered, size 1; coalesces signals
	done       chan struct{}
}

func newNotifier() *notifier {
	n := &notifier{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	n.cond = sync.NewCond(&n.mu)
	go n.run()
	return n
}

// enqueue appends emissions to the back of the queue.
// Emissions enqueued after close are dropped.
func (n *notifier) enqueue(batch []emission) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.queue = append(n.queue, batch...)

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// run is the single delivery goroutine.
// Handlers run here, never on the mutating call stack.
func (n *notifier) run() {
	defer close(n.done)

	for {
		n.mu.Lock()
		for len(n.queue) == 0 {
			if n.closed {
				n.mu.Unlock()
				return
			}
			n.cond.Broadcast()
			n.mu.Unlock()
			<-n.wake
			n.mu.Lock()
		}
		e := n.queue[0]
		n.queue = n.queue[1:]
		n.delivering = true
		n.mu.Unlock()

		e.sig.dispatch(e.args)

		n.mu.Lock()
		n.delivering = false
		if len(n.queue) == 0 {
			n.cond.Broadcast()
		}
		n.mu.Unlock()
	}
}

// drain blocks until every queued emission has been delivered.
func (n *notifier) drain() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for !n.closed && (len(n.queue) > 0 || n.delivering) {
		n.cond.Wait()
	}
}

// close stops the delivery loop after the current dispatch finishes.
// Undelivered emissions are discarded.
func (n *notifier) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.queue = nil
	n.cond.Broadcast()
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
	<-n.done
	slog.Debug("notifier stopped")
}
