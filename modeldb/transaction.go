package modeldb

// committedTx is the full delta-set of one committed transaction: one
// entry per touched object, in first-touch order. It doubles as the
// undo checkpoint.
type committedTx struct {
	seq     int64
	meta    Meta
	entries []txEntry
}

type txEntry struct {
	obj     Object
	changes []Change
}

// objectChanges accumulates one object's deltas while a transaction is
// recording.
//
// List and Text changes append in mutation order. Map, Record and Table
// changes collapse to a single net delta per key: the first removal of
// a key wins (the pre-transaction value) and the last addition wins, so
// applying the single inverse restores the pre-transaction state.
type objectChanges struct {
	obj     Object
	changes []Change
	touched map[string]struct{}
}

func (oc *objectChanges) add(c Change) {
	switch ch := c.(type) {
	case *ListChange, *TextChange:
		oc.changes = append(oc.changes, c)
	case *MapChange:
		oc.mergeMap(ch)
	case *RecordChange:
		oc.mergeRecord(ch)
	case *TableChange:
		oc.mergeTable(ch)
	default:
		panic("modeldb: unknown change type")
	}
}

func (oc *objectChanges) seen(k string) bool {
	_, ok := oc.touched[k]
	return ok
}

func (oc *objectChanges) mark(k string) {
	if oc.touched == nil {
		oc.touched = make(map[string]struct{})
	}
	oc.touched[k] = struct{}{}
}

func (oc *objectChanges) mergeMap(next *MapChange) {
	var acc *MapChange
	if len(oc.changes) == 0 {
		acc = &MapChange{Removed: map[string]Value{}, Added: map[string]Value{}}
		oc.changes = []Change{acc}
	} else {
		acc = oc.changes[0].(*MapChange)
	}

	// First removal per key wins: it holds the pre-transaction value.
	for k, old := range next.Removed {
		if !oc.seen(k) {
			oc.mark(k)
			acc.Removed[k] = old
		}
	}
	for k := range next.Added {
		if !oc.seen(k) {
			oc.mark(k)
		}
	}

	// Last addition per key wins; a removal without re-addition deletes.
	for k, v := range next.Added {
		acc.Added[k] = v
	}
	for k := range next.Removed {
		if _, ok := next.Added[k]; !ok {
			delete(acc.Added, k)
		}
	}
}

func (oc *objectChanges) mergeRecord(next *RecordChange) {
	var acc *RecordChange
	if len(oc.changes) == 0 {
		acc = &RecordChange{Old: map[string]any{}, New: map[string]any{}}
		oc.changes = []Change{acc}
	} else {
		acc = oc.changes[0].(*RecordChange)
	}

	for k, old := range next.Old {
		if !oc.seen(k) {
			oc.mark(k)
			acc.Old[k] = old
		}
	}
	for k, v := range next.New {
		if !oc.seen(k) {
			oc.mark(k)
		}
		acc.New[k] = v
	}
}

func (oc *objectChanges) mergeTable(next *TableChange) {
	var acc *TableChange
	if len(oc.changes) == 0 {
		acc = &TableChange{Removed: map[string]*Record{}, Added: map[string]*Record{}}
		oc.changes = []Change{acc}
	} else {
		acc = oc.changes[0].(*TableChange)
	}

	for id, rec := range next.Removed {
		if !oc.seen(id) {
			oc.mark(id)
			acc.Removed[id] = rec
		}
	}
	for id := range next.Added {
		if !oc.seen(id) {
			oc.mark(id)
		}
	}

	for id, rec := range next.Added {
		acc.Added[id] = rec
	}
	for id := range next.Removed {
		if _, ok := next.Added[id]; !ok {
			delete(acc.Added, id)
		}
	}
}

// finalize strips keys whose net effect is a no-op (removed and
// re-added with an equal value) and drops empty changes entirely.
func (oc *objectChanges) finalize() []Change {
	out := make([]Change, 0, len(oc.changes))
	for _, c := range oc.changes {
		switch ch := c.(type) {
		case *MapChange:
			for k, old := range ch.Removed {
				if v, ok := ch.Added[k]; ok && Equal(old, v) {
					delete(ch.Removed, k)
					delete(ch.Added, k)
				}
			}
		case *RecordChange:
			for k, old := range ch.Old {
				if v, ok := ch.New[k]; ok && propEqual(old, v) {
					delete(ch.Old, k)
					delete(ch.New, k)
				}
			}
		case *TableChange:
			for id, rec := range ch.Removed {
				if added, ok := ch.Added[id]; ok && added == rec {
					delete(ch.Removed, id)
					delete(ch.Added, id)
				}
			}
		}
		if !isEmptyChange(c) {
			out = append(out, c)
		}
	}
	return out
}

// propEqual compares record property values: primitives by deep value
// equality, collection objects by identity.
func propEqual(a, b any) bool {
	av, aok := a.(Value)
	bv, bok := b.(Value)
	if aok || bok {
		return aok == bok && Equal(av, bv)
	}
	return a == b
}

// transactionManager is the single gate through which all mutation
// flows. It owns the currently recording delta buffer and enforces the
// no-reentrancy rule.
//
// State machine: Idle -> Recording -> Idle. Commit always runs to
// completion before transact returns or re-panics; there is no partial
// rollback (deltas already mutated live state by the time they are
// buffered).
type transactionManager struct {
	db        *DB
	recording bool
	meta      Meta
	order     []*objectChanges
	index     map[string]*objectChanges
}

func newTransactionManager(db *DB) *transactionManager {
	return &transactionManager{db: db}
}

// begin opens the recording scope. Fails with ReentrancyError if a
// transaction is already open.
func (m *transactionManager) begin(meta Meta) error {
	if m.recording {
		return &ReentrancyError{}
	}
	m.recording = true
	m.meta = meta
	m.order = nil
	m.index = make(map[string]*objectChanges)
	return nil
}

// ensure panics unless a transaction is recording. Mutators call this
// before touching live state so state and delta buffer never diverge.
func (m *transactionManager) ensure() {
	if !m.recording {
		panic("modeldb: mutation outside transaction")
	}
}

// record buffers one delta for obj, merging per the object's kind.
func (m *transactionManager) record(obj Object, c Change) {
	m.ensure()
	oc, ok := m.index[obj.ID()]
	if !ok {
		oc = &objectChanges{obj: obj}
		m.index[obj.ID()] = oc
		m.order = append(m.order, oc)
	}
	oc.add(c)
}

// end closes the recording scope and returns the committed transaction,
// or nil when nothing effectively changed.
func (m *transactionManager) end() *committedTx {
	m.recording = false

	var entries []txEntry
	for _, oc := range m.order {
		changes := oc.finalize()
		if len(changes) == 0 {
			continue
		}
		entries = append(entries, txEntry{obj: oc.obj, changes: changes})
	}
	m.order = nil
	m.index = nil

	if len(entries) == 0 {
		return nil
	}
	return &committedTx{
		seq:     m.db.clock.Next(),
		meta:    m.meta,
		entries: entries,
	}
}
