package modeldb

import "sync"

// Signal is a per-object change notification channel.
//
// Handlers connected to a signal are invoked on the DB's notifier
// goroutine, after the transaction that caused the emission has
// returned and in global commit order. Mutation stays with the owning
// goroutine: a handler must not open a transaction itself (the
// transaction manager is not synchronized across goroutines) and must
// not call Drain, which waits for the handler to return. A handler
// wanting a follow-up change hands it back to the owning goroutine; a
// channel send is enough.
//
// Thread-safety: Connect and Disconnect are safe from any goroutine;
// dispatch happens only on the notifier goroutine.
type Signal struct {
	mu       sync.Mutex
	nextID   int
	handlers []handlerEntry
}

type handlerEntry struct {
	id int
	fn func(ChangedArgs)
}

// Connection identifies one connected handler and allows disconnecting it.
type Connection struct {
	sig *Signal
	id  int
}

func newSignal() *Signal {
	return &Signal{}
}

// Connect registers a handler. Handlers are invoked in connection order.
func (s *Signal) Connect(fn func(ChangedArgs)) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.handlers = append(s.handlers, handlerEntry{id: s.nextID, fn: fn})
	return &Connection{sig: s, id: s.nextID}
}

// Disconnect removes the handler. Safe to call more than once.
func (c *Connection) Disconnect() {
	if c == nil || c.sig == nil {
		return
	}
	s := c.sig
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.handlers {
		if h.id == c.id {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			break
		}
	}
	c.sig = nil
}

// dispatch invokes all connected handlers with args.
// Called only from the notifier goroutine.
func (s *Signal) dispatch(args ChangedArgs) {
	s.mu.Lock()
	handlers := make([]handlerEntry, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, h := range handlers {
		h.fn(args)
	}
}
