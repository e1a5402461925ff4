package modeldb

import (
	"fmt"
	"maps"
	"slices"
)

// Record is a named property bag with a fixed schema: the property set
// is determined by the initial state at creation and never grows or
// shrinks. Each property holds either a primitive Value or a List, Map
// or Text that the record exclusively owns (the collection's parent is
// this record).
type Record struct {
	object
	schema []string
	props  map[string]any
}

// Keys returns the property names in sorted order.
func (r *Record) Keys() []string {
	return slices.Clone(r.schema)
}

// Has reports whether name is part of the record's schema.
func (r *Record) Has(name string) bool {
	_, ok := r.props[name]
	return ok
}

// Get returns the property value - a Value, *List, *Map or *Text - or
// nil for a property outside the schema.
func (r *Record) Get(name string) any {
	return r.props[name]
}

// GetValue returns the property as a primitive Value, or nil when the
// property is absent or holds a collection.
func (r *Record) GetValue(name string) Value {
	v, _ := r.props[name].(Value)
	return v
}

// GetList returns the property as a *List, or nil.
func (r *Record) GetList(name string) *List {
	l, _ := r.props[name].(*List)
	return l
}

// GetMap returns the property as a *Map, or nil.
func (r *Record) GetMap(name string) *Map {
	m, _ := r.props[name].(*Map)
	return m
}

// GetText returns the property as a *Text, or nil.
func (r *Record) GetText(name string) *Text {
	t, _ := r.props[name].(*Text)
	return t
}

// Set replaces the property value. Names outside the schema are
// ignored, as is setting a property to an equal value. Assigning a
// collection reassigns ownership: the collection's parent becomes this
// record and any collection previously held at the slot is orphaned.
// Assigning a collection some other object still owns panics, since
// each collection has exactly one owner at a time; orphan it first.
//
// Accepts Values, collections, or plain Go values convertible by
// FromGo; an unconvertible value panics, as it can only come from a
// programming error.
func (r *Record) Set(name string, v any) {
	r.db.tm.ensure()
	old, ok := r.props[name]
	if !ok {
		return
	}
	val := normalizeProp(v)
	if propEqual(old, val) {
		return
	}

	if child, isObj := val.(Object); isObj {
		if child.Parent() != nil {
			panic("modeldb: collection already owned")
		}
		setParent(child, r)
	}
	if child, wasObj := old.(Object); wasObj {
		setParent(child, nil)
	}
	r.props[name] = val

	r.db.tm.record(r, &RecordChange{
		Old: map[string]any{name: old},
		New: map[string]any{name: val},
	})
}

// applyChange replays a RecordChange delta against live state,
// recording it anew. Used by undo/redo replay.
func (r *Record) applyChange(c *RecordChange) {
	for _, name := range slices.Sorted(maps.Keys(c.New)) {
		r.Set(name, c.New[name])
	}
}

// normalizeProp coerces a property assignment into its stored form:
// collections pass through, everything else converts via FromGo.
func normalizeProp(v any) any {
	switch v.(type) {
	case *List, *Map, *Text:
		return v
	}
	val, err := FromGo(v)
	if err != nil {
		panic(fmt.Sprintf("modeldb: invalid record property value: %v", err))
	}
	return Clone(val)
}

// orphanAll detaches every collection the record has adopted so far.
// Unwinds a CreateRecord that fails partway through its state map.
func (r *Record) orphanAll() {
	for _, v := range r.props {
		if child, ok := v.(Object); ok {
			setParent(child, nil)
		}
	}
}

// setParent updates a child's non-owning back-reference.
func setParent(child Object, parent Object) {
	switch c := child.(type) {
	case *List:
		c.parent = parent
	case *Map:
		c.parent = parent
	case *Text:
		c.parent = parent
	case *Record:
		c.parent = parent
	case *Table:
		// Tables are roots; their parent is always nil.
	}
}
