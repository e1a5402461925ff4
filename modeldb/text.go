package modeldb

// Text is a single mutable text value, owned by at most one Record at a
// time. Indices count runes, not bytes, and follow List's conventions:
// negative indices address from the end and out-of-range positions
// clamp rather than error.
type Text struct {
	object
	runes []rune
}

// Len returns the text length in runes.
func (t *Text) Len() int {
	return len(t.runes)
}

// String returns the current text.
func (t *Text) String() string {
	return string(t.runes)
}

// Append appends s to the end.
func (t *Text) Append(s string) {
	t.db.tm.ensure()
	if s == "" {
		return
	}
	index := len(t.runes)
	t.runes = append(t.runes, []rune(s)...)
	t.db.tm.record(t, &TextChange{Index: index, Added: s})
}

// Insert inserts s at the rune index, clamped into [0, Len].
func (t *Text) Insert(index int, s string) {
	t.Splice(index, 0, s)
}

// Splice removes count runes starting at index and inserts s in their
// place, yielding one delta with the exact removed and added
// substrings. It returns the removed substring.
func (t *Text) Splice(index, count int, s string) string {
	t.db.tm.ensure()
	i := clamp(resolveIndex(index, len(t.runes)), 0, len(t.runes))
	count = clamp(count, 0, len(t.runes)-i)
	if count == 0 && s == "" {
		return ""
	}

	removed := string(t.runes[i : i+count])
	added := []rune(s)

	tail := make([]rune, len(t.runes)-i-count)
	copy(tail, t.runes[i+count:])
	t.runes = append(append(t.runes[:i], added...), tail...)

	t.db.tm.record(t, &TextChange{Index: i, Removed: removed, Added: s})
	return removed
}

// Clear removes all text.
func (t *Text) Clear() {
	t.db.tm.ensure()
	if len(t.runes) == 0 {
		return
	}
	removed := string(t.runes)
	t.runes = nil
	t.db.tm.record(t, &TextChange{Index: 0, Removed: removed})
}

// applyChange replays a TextChange delta against live state, recording
// it anew. Used by undo/redo replay.
func (t *Text) applyChange(c *TextChange) {
	t.Splice(c.Index, len([]rune(c.Removed)), c.Added)
}
