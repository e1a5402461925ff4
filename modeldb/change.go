package modeldb

// Meta is the metadata carried by every committed transaction and
// re-exposed on every ChangedArgs it produces.
type Meta struct {
	// IsUndo is true when the transaction replayed an undo checkpoint's
	// inverse delta-set.
	IsUndo bool
	// IsRedo is true when the transaction replayed a redo checkpoint's
	// forward delta-set.
	IsRedo bool
	// IsLocal is true unless the transaction was initiated as a replay.
	IsLocal bool
	// UserID identifies the acting user. Defaults to the DB's actor.
	UserID string
	// SessionID identifies the acting session. Defaults to the DB's actor.
	SessionID string
}

// Change is the sealed delta union. Exactly one concrete change type
// exists per object kind: ListChange, MapChange, TextChange,
// RecordChange, TableChange. Every change is invertible.
type Change interface {
	change() // Sealed - only the five delta types implement it
}

// ListChange describes one contiguous list mutation: Removed elements
// were taken out at Index and Added elements inserted in their place.
type ListChange struct {
	Index   int
	Removed []Value
	Added   []Value
}

func (*ListChange) change() {}

// MapChange describes the net key-level mutation of a Map within one
// transaction. A key in Removed held that value before the transaction;
// a key in Added holds that value after it. Repeated writes to the same
// key collapse: first removed, last added.
type MapChange struct {
	Removed map[string]Value
	Added   map[string]Value
}

func (*MapChange) change() {}

// TextChange describes one contiguous text mutation at a rune index.
type TextChange struct {
	Index   int
	Removed string
	Added   string
}

func (*TextChange) change() {}

// RecordChange describes the net property-level mutation of a Record.
// Old and New carry partial state for only the changed properties;
// values are primitives (Value) or collection objects.
type RecordChange struct {
	Old map[string]any
	New map[string]any
}

func (*RecordChange) change() {}

// TableChange describes the net record-level mutation of a Table,
// keyed by record id.
type TableChange struct {
	Removed map[string]*Record
	Added   map[string]*Record
}

func (*TableChange) change() {}

// ChangedArgs is the payload delivered on an object's Changed signal.
//
// For a direct emission, Target is the receiving object itself. For a
// bubbled emission an ancestor republishes the descendant's args
// unchanged, so Target still names the mutated descendant and Kind its
// kind; receivers distinguish direct from bubbled by comparing Target
// against themselves.
type ChangedArgs struct {
	// Kind is the mutated object's kind.
	Kind Kind
	// Target is the mutated object.
	Target Object
	// Changes is the object's ordered change list for the commit.
	Changes []Change
	// Meta is the committing transaction's metadata.
	Meta Meta
}

// IsBubbled reports whether args arrived on receiver via ancestor
// bubbling rather than as a direct emission.
func (a ChangedArgs) IsBubbled(receiver Object) bool {
	return a.Target != receiver
}

// invertChange returns the inverse delta: added and removed swap, as do
// old and new state. Applying the inverse of a change right after the
// change restores the prior observable state.
func invertChange(c Change) Change {
	switch ch := c.(type) {
	case *ListChange:
		return &ListChange{Index: ch.Index, Removed: ch.Added, Added: ch.Removed}
	case *MapChange:
		return &MapChange{Removed: ch.Added, Added: ch.Removed}
	case *TextChange:
		return &TextChange{Index: ch.Index, Removed: ch.Added, Added: ch.Removed}
	case *RecordChange:
		return &RecordChange{Old: ch.New, New: ch.Old}
	case *TableChange:
		return &TableChange{Removed: ch.Added, Added: ch.Removed}
	default:
		panic("modeldb: unknown change type")
	}
}

// invertChanges inverts a per-object change list. The list order is
// reversed so index arithmetic in list and text deltas stays valid when
// the inverse is applied.
func invertChanges(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i, c := range changes {
		out[len(changes)-1-i] = invertChange(c)
	}
	return out
}

// isEmptyChange reports whether a change carries no mutation. Empty
// changes are dropped at commit so they neither notify nor pollute the
// undo history.
func isEmptyChange(c Change) bool {
	switch ch := c.(type) {
	case *ListChange:
		return len(ch.Removed) == 0 && len(ch.Added) == 0
	case *MapChange:
		return len(ch.Removed) == 0 && len(ch.Added) == 0
	case *TextChange:
		return ch.Removed == "" && ch.Added == ""
	case *RecordChange:
		return len(ch.Old) == 0 && len(ch.New) == 0
	case *TableChange:
		return len(ch.Removed) == 0 && len(ch.Added) == 0
	default:
		return true
	}
}
