package modeldb

import (
	"strconv"

	"github.com/google/uuid"
)

// Kind identifies one of the five db object kinds.
// The set is closed: the bubbler and undo inversion switch over it
// exhaustively.
type Kind int

const (
	// KindList is an ordered sequence of Values.
	KindList Kind = iota + 1
	// KindMap is a string-keyed collection of Values.
	KindMap
	// KindText is a mutable text value.
	KindText
	// KindRecord is a fixed-schema property bag.
	KindRecord
	// KindTable is a keyed collection of Records and the root of an
	// ownership tree.
	KindTable
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindText:
		return "text"
	case KindRecord:
		return "record"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Object is the common identity of every db entity.
//
// The parent link is a back-reference only, never an ownership edge:
// ownership flows strictly parent-owns-child through the forest
// List/Map/Text -> Record -> Table. A Table's parent is always nil.
type Object interface {
	// Kind returns the object's kind tag.
	Kind() Kind
	// ID returns the object's globally unique, immutable id.
	ID() string
	// Parent returns the owning object, or nil while unattached.
	Parent() Object
	// Changed returns the object's change signal. Emissions are
	// asynchronous and scoped to this object; ancestors republish a
	// descendant's args unchanged (bubbling).
	Changed() *Signal
}

// object carries the identity shared by all five kinds.
type object struct {
	db      *DB
	kind    Kind
	id      string
	parent  Object
	changed *Signal
}

func newObject(db *DB, kind Kind) object {
	return object{
		db:      db,
		kind:    kind,
		id:      db.idgen.Generate(),
		changed: newSignal(),
	}
}

func (o *object) Kind() Kind       { return o.kind }
func (o *object) ID() string       { return o.id }
func (o *object) Parent() Object   { return o.parent }
func (o *object) Changed() *Signal { return o.changed }

// IDGenerator generates unique object and transaction ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 ids.
// UUIDv7 keeps ids roughly sortable by creation time, which makes logs
// and traces easier to follow than fully random ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator generates deterministic sequential ids for tests and
// golden-file scenarios.
type FixedGenerator struct {
	Prefix string
	n      int
}

// Generate returns "{prefix}-{n}" with n increasing from 1.
func (g *FixedGenerator) Generate() string {
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "obj"
	}
	return prefix + "-" + strconv.Itoa(g.n)
}
