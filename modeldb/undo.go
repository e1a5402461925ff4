package modeldb

// undoManager stores committed transactions as invertible change-sets
// on two stacks.
//
// Undo pops the most recent checkpoint, applies its inverse delta-set
// as a new transaction tagged IsUndo, and pushes the original entry on
// the redo stack; redo is symmetric with the forward delta-set and
// IsRedo. Replay transactions never create a checkpoint on the stack
// they were popped from, so the history cannot grow from its own
// replays. Any new effective local transaction invalidates the redo
// stack.
type undoManager struct {
	db        *DB
	undoStack []*committedTx
	redoStack []*committedTx
}

func newUndoManager(db *DB) *undoManager {
	return &undoManager{db: db}
}

// push appends a checkpoint for a committed local transaction and
// clears the redo stack.
func (u *undoManager) push(tx *committedTx) {
	u.undoStack = append(u.undoStack, tx)
	u.redoStack = nil
}

func (u *undoManager) canUndo() bool { return len(u.undoStack) > 0 }
func (u *undoManager) canRedo() bool { return len(u.redoStack) > 0 }

// undo applies the inverse of the most recent checkpoint. A no-op when
// the undo stack is empty.
func (u *undoManager) undo() error {
	if len(u.undoStack) == 0 {
		return nil
	}
	tx := u.undoStack[len(u.undoStack)-1]
	u.undoStack = u.undoStack[:len(u.undoStack)-1]

	meta := u.db.defaultMeta()
	meta.IsUndo = true
	meta.IsLocal = false

	if err := u.db.replay(invertEntries(tx.entries), meta); err != nil {
		u.undoStack = append(u.undoStack, tx)
		return err
	}
	u.redoStack = append(u.redoStack, tx)
	return nil
}

// redo re-applies the most recently undone checkpoint. A no-op when the
// redo stack is empty.
func (u *undoManager) redo() error {
	if len(u.redoStack) == 0 {
		return nil
	}
	tx := u.redoStack[len(u.redoStack)-1]
	u.redoStack = u.redoStack[:len(u.redoStack)-1]

	meta := u.db.defaultMeta()
	meta.IsRedo = true
	meta.IsLocal = false

	if err := u.db.replay(tx.entries, meta); err != nil {
		u.redoStack = append(u.redoStack, tx)
		return err
	}
	u.undoStack = append(u.undoStack, tx)
	return nil
}

// invertEntries inverts a checkpoint's delta-set: entries are walked in
// reverse object order and each per-object change list is inverted,
// keeping multi-object unwinding consistent with how the transaction
// was recorded.
func invertEntries(entries []txEntry) []txEntry {
	out := make([]txEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = txEntry{
			obj:     e.obj,
			changes: invertChanges(e.changes),
		}
	}
	return out
}
