package modeldb

import "log/slog"

// commit runs the post-commit phase for a closed transaction: fan the
// buffered per-object deltas out as notifications, then record the undo
// checkpoint.
//
// For every touched object, in first-touch order, one direct emission
// is built and the same args value is scheduled on every ancestor's
// signal walking the parent chain up to its root - an ancestor does not
// synthesize a new change record, it republishes the descendant's. The
// whole fan-out for one commit is enqueued as a single batch, so
// delivery preserves commit order across transactions and, within a
// commit, mutation order then child-to-root bubble order.
//
// Replay transactions (IsUndo/IsRedo) notify like any other commit but
// do not create a checkpoint; checkpoint stack movement is handled by
// the undo manager around the replay.
func (d *DB) commit(tx *committedTx) {
	var batch []emission
	for _, e := range tx.entries {
		args := ChangedArgs{
			Kind:    e.obj.Kind(),
			Target:  e.obj,
			Changes: e.changes,
			Meta:    tx.meta,
		}
		batch = append(batch, emission{sig: e.obj.Changed(), args: args})
		for p := e.obj.Parent(); p != nil; p = p.Parent() {
			batch = append(batch, emission{sig: p.Changed(), args: args})
		}
	}
	d.notifier.enqueue(batch)

	if !tx.meta.IsUndo && !tx.meta.IsRedo {
		d.undo.push(tx)
	}

	slog.Debug("transaction committed",
		"seq", tx.seq,
		"objects", len(tx.entries),
		"emissions", len(batch),
		"is_undo", tx.meta.IsUndo,
		"is_redo", tx.meta.IsRedo,
		"user_id", tx.meta.UserID,
	)
}

// applyChange replays one delta against its object. The switch is
// exhaustive over the closed kind union.
func (d *DB) applyChange(obj Object, c Change) {
	switch ch := c.(type) {
	case *ListChange:
		obj.(*List).applyChange(ch)
	case *MapChange:
		obj.(*Map).applyChange(ch)
	case *TextChange:
		obj.(*Text).applyChange(ch)
	case *RecordChange:
		obj.(*Record).applyChange(ch)
	case *TableChange:
		obj.(*Table).applyChange(ch)
	default:
		panic("modeldb: unknown change type")
	}
}

// replay runs a delta-set as a new transaction with the given metadata.
func (d *DB) replay(entries []txEntry, meta Meta) error {
	return d.transact(meta, func() error {
		for _, e := range entries {
			for _, c := range e.changes {
				d.applyChange(e.obj, c)
			}
		}
		return nil
	})
}
