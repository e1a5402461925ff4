package modeldb

import (
	"fmt"
	"maps"
	"slices"
)

// LocalActor is the default user and session id attached to
// transactions when no explicit actor is configured.
const LocalActor = "local"

// DB is the top-level façade: the table registry, the factory for new
// collections and records, and the entry point for Transact, Undo and
// Redo.
//
// Concurrency model: single-writer, cooperative. Mutation is legal only
// inside the callback of the one open transaction; reads are legal at
// any time from the mutating goroutine. The DB itself takes no locks -
// correctness rests on the reentrancy guard and on bubbling and undo
// being derived from already-applied state. Notification delivery runs
// on a dedicated goroutine; see Signal.
type DB struct {
	idgen    IDGenerator
	clock    *Clock
	tm       *transactionManager
	undo     *undoManager
	notifier *notifier
	tables   map[*Token]*Table

	userID    string
	sessionID string
}

// Option configures a DB.
type Option func(*DB)

// WithActor sets the default user and session id stamped on
// transactions started with Transact.
func WithActor(userID, sessionID string) Option {
	return func(d *DB) {
		d.userID = userID
		d.sessionID = sessionID
	}
}

// WithIDGenerator replaces the UUIDv7 id generator. Tests and golden
// scenarios use a FixedGenerator for deterministic ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *DB) {
		d.idgen = g
	}
}

// New creates an empty database and starts its notifier goroutine.
// Callers should Close the DB when done with it.
func New(opts ...Option) *DB {
	d := &DB{
		idgen:     UUIDv7Generator{},
		clock:     NewClock(),
		tables:    make(map[*Token]*Table),
		userID:    LocalActor,
		sessionID: LocalActor,
	}
	d.tm = newTransactionManager(d)
	d.undo = newUndoManager(d)
	for _, opt := range opts {
		opt(d)
	}
	d.notifier = newNotifier()
	return d
}

// Close stops the notifier goroutine. Notifications not yet delivered
// are discarded; call Drain first to flush them.
func (d *DB) Close() {
	d.notifier.close()
}

// Drain blocks until every scheduled notification has been delivered.
func (d *DB) Drain() {
	d.notifier.drain()
}

func (d *DB) defaultMeta() Meta {
	return Meta{IsLocal: true, UserID: d.userID, SessionID: d.sessionID}
}

// Transact runs fn with mutation enabled and commits the buffered
// deltas when fn returns. Fails with ReentrancyError when called while
// a transaction is already open.
//
// There is no rollback: deltas buffered before fn returns an error (or
// panics) have already mutated live state and are committed as-is; the
// error is returned unchanged.
func (d *DB) Transact(fn func() error) error {
	return d.transact(d.defaultMeta(), fn)
}

// TransactAs is Transact with explicit actor metadata for this one
// transaction.
func (d *DB) TransactAs(userID, sessionID string, fn func() error) error {
	meta := d.defaultMeta()
	meta.UserID = userID
	meta.SessionID = sessionID
	return d.transact(meta, fn)
}

func (d *DB) transact(meta Meta, fn func() error) error {
	if err := d.tm.begin(meta); err != nil {
		return err
	}
	// The deferred commit makes the close-and-commit guarantee hold even
	// when fn panics.
	defer func() {
		if tx := d.tm.end(); tx != nil {
			d.commit(tx)
		}
	}()
	return fn()
}

// Undo applies the inverse of the most recent checkpoint as a new
// transaction tagged IsUndo. A no-op when CanUndo is false.
func (d *DB) Undo() error {
	return d.undo.undo()
}

// Redo re-applies the most recently undone checkpoint as a new
// transaction tagged IsRedo. A no-op when CanRedo is false.
func (d *DB) Redo() error {
	return d.undo.redo()
}

// CanUndo reports whether the undo stack is non-empty.
func (d *DB) CanUndo() bool {
	return d.undo.canUndo()
}

// CanRedo reports whether the redo stack is non-empty.
func (d *DB) CanRedo() bool {
	return d.undo.canRedo()
}

// CreateList returns a fresh unattached list seeded with vs.
func (d *DB) CreateList(vs ...Value) *List {
	return &List{
		object: newObject(d, KindList),
		values: cloneValues(vs),
	}
}

// CreateMap returns a fresh unattached map.
func (d *DB) CreateMap() *Map {
	return &Map{
		object: newObject(d, KindMap),
		items:  make(map[string]Value),
	}
}

// CreateText returns a fresh unattached text seeded with s.
func (d *DB) CreateText(s string) *Text {
	return &Text{
		object: newObject(d, KindText),
		runes:  []rune(s),
	}
}

// CreateRecord returns a fresh unattached record whose schema is the
// key set of state. Values may be primitives (anything FromGo accepts)
// or unowned collections, which the record adopts; a collection some
// other object still owns is rejected.
func (d *DB) CreateRecord(state map[string]any) (*Record, error) {
	rec := &Record{
		object: newObject(d, KindRecord),
		schema: slices.Sorted(maps.Keys(state)),
		props:  make(map[string]any, len(state)),
	}
	for _, name := range rec.schema {
		switch child := state[name].(type) {
		case *List, *Map, *Text:
			obj := child.(Object)
			if obj.Parent() != nil {
				rec.orphanAll()
				return nil, fmt.Errorf("property %q: collection already owned", name)
			}
			setParent(obj, rec)
			rec.props[name] = child
		default:
			val, err := FromGo(child)
			if err != nil {
				rec.orphanAll()
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			rec.props[name] = Clone(val)
		}
	}
	return rec, nil
}

// CreateTable creates the table for token, seeded with recs, and
// registers it. Fails with TableExistsError when a table for the token
// already exists.
func (d *DB) CreateTable(token *Token, recs ...*Record) (*Table, error) {
	if _, ok := d.tables[token]; ok {
		return nil, &TableExistsError{Token: token}
	}
	t := &Table{
		object:  newObject(d, KindTable),
		token:   token,
		records: make(map[string]*Record, len(recs)),
	}
	t.attach(recs)
	d.tables[token] = t
	return t, nil
}

// HasTable reports whether a table exists for token.
func (d *DB) HasTable(token *Token) bool {
	_, ok := d.tables[token]
	return ok
}

// GetTable returns the table for token. Fails with TableNotFoundError
// when absent.
func (d *DB) GetTable(token *Token) (*Table, error) {
	t, ok := d.tables[token]
	if !ok {
		return nil, &TableNotFoundError{Token: token}
	}
	return t, nil
}

// DeleteTable unregisters the table for token, making it and everything
// it owns unreachable. Disposal is not observed by change events. Fails
// with TableNotFoundError when absent.
func (d *DB) DeleteTable(token *Token) error {
	if _, ok := d.tables[token]; !ok {
		return &TableNotFoundError{Token: token}
	}
	delete(d.tables, token)
	return nil
}

// Tables returns the registered tables ordered by token name, then id
// for equal names.
func (d *DB) Tables() []*Table {
	out := make([]*Table, 0, len(d.tables))
	for _, t := range d.tables {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Table) int {
		if a.token.name != b.token.name {
			if a.token.name < b.token.name {
				return -1
			}
			return 1
		}
		if a.id < b.id {
			return -1
		}
		if a.id > b.id {
			return 1
		}
		return 0
	})
	return out
}
