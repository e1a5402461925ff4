package modeldb

import (
	"maps"
	"slices"
)

// Token is a unique handle identifying the state shape of the Records a
// Table holds. Tokens compare by identity: two tokens created with the
// same name are distinct, and at most one Table exists per token within
// a DB.
type Token struct {
	name string
}

// NewToken creates a new token. The name is purely diagnostic.
func NewToken(name string) *Token {
	return &Token{name: name}
}

// Name returns the token's diagnostic name.
func (t *Token) Name() string {
	return t.name
}

// Table is a keyed collection of Records, keyed by the record's id and
// bound to one token. A Table is always the root of its ownership tree;
// its parent is nil.
type Table struct {
	object
	token   *Token
	records map[string]*Record
}

// Token returns the token the table was created with.
func (t *Table) Token() *Token {
	return t.token
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Has reports whether a record with the id is present.
func (t *Table) Has(id string) bool {
	_, ok := t.records[id]
	return ok
}

// Get returns the record with the id, or nil when absent.
func (t *Table) Get(id string) *Record {
	return t.records[id]
}

// Records returns all records ordered by id.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.records))
	for _, id := range slices.Sorted(maps.Keys(t.records)) {
		out = append(out, t.records[id])
	}
	return out
}

// Insert adds a record, keyed by its id. Inserting a record the table
// already holds is a no-op; inserting a record owned by another table
// panics, since each record has exactly one owner at a time.
func (t *Table) Insert(rec *Record) {
	t.db.tm.ensure()
	if t.records[rec.ID()] == rec {
		return
	}
	if rec.Parent() != nil {
		panic("modeldb: record already owned by a table")
	}
	t.records[rec.ID()] = rec
	rec.parent = t
	t.db.tm.record(t, &TableChange{Added: map[string]*Record{rec.ID(): rec}})
}

// Delete removes the record with the id, orphaning it. Absent ids are
// ignored.
func (t *Table) Delete(id string) {
	t.db.tm.ensure()
	rec, ok := t.records[id]
	if !ok {
		return
	}
	delete(t.records, id)
	rec.parent = nil
	t.db.tm.record(t, &TableChange{Removed: map[string]*Record{id: rec}})
}

// Clear removes every record.
func (t *Table) Clear() {
	t.db.tm.ensure()
	if len(t.records) == 0 {
		return
	}
	removed := t.records
	t.records = make(map[string]*Record)
	for _, rec := range removed {
		rec.parent = nil
	}
	t.db.tm.record(t, &TableChange{Removed: removed})
}

// applyChange replays a TableChange delta against live state, recording
// it anew. Used by undo/redo replay.
func (t *Table) applyChange(c *TableChange) {
	for _, id := range slices.Sorted(maps.Keys(c.Added)) {
		t.Insert(c.Added[id])
	}
	for _, id := range slices.Sorted(maps.Keys(c.Removed)) {
		if _, ok := c.Added[id]; !ok {
			t.Delete(id)
		}
	}
}

// attach seeds the table with records at creation time, outside the
// delta model. Used only by DB.CreateTable.
func (t *Table) attach(recs []*Record) {
	for _, rec := range recs {
		if rec.Parent() != nil {
			panic("modeldb: record already owned by a table")
		}
		t.records[rec.ID()] = rec
		rec.parent = t
	}
}
