package modeldb

// List is an ordered sequence of JSON values, owned by at most one
// Record at a time.
//
// Index conventions (shared with Text): negative indices address from
// the end (-1 is the last element). Out-of-range Get returns nil and
// out-of-range Set/Remove are silent no-ops. Search ranges take
// inclusive start and stop; when the resolved stop precedes start the
// scan wraps around the far end of the container.
//
// Values are defensively cloned on write; values returned by reads are
// shared with internal state and must be treated as read-only.
type List struct {
	object
	values []Value
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.values)
}

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Value {
	i := resolveIndex(index, len(l.values))
	if i < 0 || i >= len(l.values) {
		return nil
	}
	return l.values[i]
}

// Slice returns a copy of the whole sequence.
func (l *List) Slice() []Value {
	out := make([]Value, len(l.values))
	copy(out, l.values)
	return out
}

// Set replaces the element at index. Out-of-range indices are ignored,
// as is setting an element to an equal value.
func (l *List) Set(index int, v Value) {
	l.db.tm.ensure()
	i := resolveIndex(index, len(l.values))
	if i < 0 || i >= len(l.values) {
		return
	}
	old := l.values[i]
	if Equal(old, v) {
		return
	}
	l.values[i] = Clone(v)
	l.db.tm.record(l, &ListChange{
		Index:   i,
		Removed: []Value{old},
		Added:   []Value{l.values[i]},
	})
}

// Push appends values to the end.
func (l *List) Push(vs ...Value) {
	l.db.tm.ensure()
	if len(vs) == 0 {
		return
	}
	index := len(l.values)
	added := cloneValues(vs)
	l.values = append(l.values, added...)
	l.db.tm.record(l, &ListChange{Index: index, Added: added})
}

// Insert inserts a value at index. The index is clamped into [0, Len],
// so inserting past the end appends.
func (l *List) Insert(index int, v Value) {
	l.db.tm.ensure()
	i := clamp(resolveIndex(index, len(l.values)), 0, len(l.values))
	added := []Value{Clone(v)}
	l.values = append(l.values[:i], append(added, l.values[i:]...)...)
	l.db.tm.record(l, &ListChange{Index: i, Added: added})
}

// Remove removes and returns the element at index, or nil when out of
// range.
func (l *List) Remove(index int) Value {
	l.db.tm.ensure()
	i := resolveIndex(index, len(l.values))
	if i < 0 || i >= len(l.values) {
		return nil
	}
	old := l.values[i]
	l.values = append(l.values[:i], l.values[i+1:]...)
	l.db.tm.record(l, &ListChange{Index: i, Removed: []Value{old}})
	return old
}

// Splice removes count elements starting at index and inserts vs in
// their place, yielding one delta with the exact removed and added
// slices. It returns the removed elements. The index is clamped into
// [0, Len] and count into what remains.
func (l *List) Splice(index, count int, vs ...Value) []Value {
	l.db.tm.ensure()
	i := clamp(resolveIndex(index, len(l.values)), 0, len(l.values))
	count = clamp(count, 0, len(l.values)-i)
	if count == 0 && len(vs) == 0 {
		return nil
	}

	removed := make([]Value, count)
	copy(removed, l.values[i:i+count])
	added := cloneValues(vs)

	tail := make([]Value, len(l.values)-i-count)
	copy(tail, l.values[i+count:])
	l.values = append(append(l.values[:i], added...), tail...)

	l.db.tm.record(l, &ListChange{Index: i, Removed: removed, Added: added})
	return removed
}

// Clear removes every element.
func (l *List) Clear() {
	l.db.tm.ensure()
	if len(l.values) == 0 {
		return
	}
	removed := l.values
	l.values = nil
	l.db.tm.record(l, &ListChange{Index: 0, Removed: removed})
}

// IndexOf returns the index of the first element equal to v in the
// inclusive range [start, stop], or -1. Pass 0, -1 to scan everything.
func (l *List) IndexOf(v Value, start, stop int) int {
	return l.FindIndex(func(elem Value) bool { return Equal(elem, v) }, start, stop)
}

// LastIndexOf returns the index of the last element equal to v scanning
// backward from start to stop inclusive, or -1. Pass -1, 0 to scan
// everything.
func (l *List) LastIndexOf(v Value, start, stop int) int {
	return l.FindLastIndex(func(elem Value) bool { return Equal(elem, v) }, start, stop)
}

// FindIndex returns the index of the first element in the inclusive
// range [start, stop] satisfying fn, or -1. When the resolved stop
// precedes start, the scan wraps past the end of the list.
func (l *List) FindIndex(fn func(Value) bool, start, stop int) int {
	n := len(l.values)
	if n == 0 {
		return -1
	}
	s := clamp(resolveIndex(start, n), 0, n-1)
	e := clamp(resolveIndex(stop, n), 0, n-1)

	if s <= e {
		for i := s; i <= e; i++ {
			if fn(l.values[i]) {
				return i
			}
		}
		return -1
	}
	for i := s; i < n; i++ {
		if fn(l.values[i]) {
			return i
		}
	}
	for i := 0; i <= e; i++ {
		if fn(l.values[i]) {
			return i
		}
	}
	return -1
}

// FindLastIndex returns the index of the last element satisfying fn,
// scanning backward from start to stop inclusive, or -1. When the
// resolved stop exceeds start, the scan wraps past the front.
func (l *List) FindLastIndex(fn func(Value) bool, start, stop int) int {
	n := len(l.values)
	if n == 0 {
		return -1
	}
	s := clamp(resolveIndex(start, n), 0, n-1)
	e := clamp(resolveIndex(stop, n), 0, n-1)

	if e <= s {
		for i := s; i >= e; i-- {
			if fn(l.values[i]) {
				return i
			}
		}
		return -1
	}
	for i := s; i >= 0; i-- {
		if fn(l.values[i]) {
			return i
		}
	}
	for i := n - 1; i >= e; i-- {
		if fn(l.values[i]) {
			return i
		}
	}
	return -1
}

// applyChange replays a ListChange delta against live state, recording
// it anew. Used by undo/redo replay.
func (l *List) applyChange(c *ListChange) {
	l.Splice(c.Index, len(c.Removed), c.Added...)
}

func resolveIndex(i, n int) int {
	if i < 0 {
		return i + n
	}
	return i
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func cloneValues(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Clone(v)
	}
	return out
}
