package modeldb

// Map is a string-keyed collection of JSON values, owned by at most one
// Record at a time. Keys are unique; iteration order is unspecified
// (use Keys for a sorted walk).
//
// Deleting an absent key is a silent no-op; Get on an absent key
// returns nil. Repeated writes to the same key within one transaction
// collapse into a single net delta for that key.
type Map struct {
	object
	items map[string]Value
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.items)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Get returns the value for key, or nil when absent. A stored JSON null
// is returned as Null{}, distinct from absence.
func (m *Map) Get(key string) Value {
	return m.items[key]
}

// Keys returns all keys in sorted order.
func (m *Map) Keys() []string {
	return ObjectValue(m.items).SortedKeys()
}

// Set stores a value under key. Setting a key to an equal value is a
// no-op.
func (m *Map) Set(key string, v Value) {
	m.db.tm.ensure()
	old, had := m.items[key]
	if had && Equal(old, v) {
		return
	}
	m.items[key] = Clone(v)

	change := &MapChange{Added: map[string]Value{key: m.items[key]}}
	if had {
		change.Removed = map[string]Value{key: old}
	}
	m.db.tm.record(m, change)
}

// Delete removes key. Absent keys are ignored.
func (m *Map) Delete(key string) {
	m.db.tm.ensure()
	old, had := m.items[key]
	if !had {
		return
	}
	delete(m.items, key)
	m.db.tm.record(m, &MapChange{Removed: map[string]Value{key: old}})
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.db.tm.ensure()
	if len(m.items) == 0 {
		return
	}
	removed := m.items
	m.items = make(map[string]Value)
	m.db.tm.record(m, &MapChange{Removed: removed})
}

// applyChange replays a MapChange delta against live state, recording
// it anew. Used by undo/redo replay.
func (m *Map) applyChange(c *MapChange) {
	for k, v := range c.Added {
		m.Set(k, v)
	}
	for k := range c.Removed {
		if _, ok := c.Added[k]; !ok {
			m.Delete(k)
		}
	}
}
