// Package modeldb implements an in-memory, transactional document database:
// a forest of mutable JSON-valued collections (List, Map, Text), Records
// that own collections as properties, and Tables that hold Records, with
// atomic multi-object mutation, undo/redo, and asynchronous change
// notification that bubbles from a mutated child to every ancestor.
//
// ARCHITECTURE:
//
// Single-Writer Transactions:
// All mutation flows through DB.Transact. Exactly one transaction may be
// open per DB at a time; a nested Transact call fails fast with
// ReentrancyError. Mutators apply their change to live state immediately
// and record an invertible delta in the open transaction's buffer.
//
// Commit Pipeline:
// When the transaction body returns, the buffered per-object deltas are
// (1) fanned out as ChangedArgs to each touched object's signal and,
// bubbled unchanged, to every ancestor up to the owning Table, and
// (2) appended to the undo history as one checkpoint. Undo and redo
// replay a checkpoint's inverse or forward delta-set as a new transaction
// tagged IsUndo/IsRedo; replay transactions populate only the opposite
// stack.
//
// Asynchronous Delivery:
// Notifications are never delivered on the mutating call stack. Commits
// enqueue emissions onto a FIFO outbound queue drained by a single
// notifier goroutine, preserving global commit order and, within a
// commit, mutation order then child-to-root bubble order. DB.Drain
// blocks until the queue is empty.
//
// The five object kinds form a closed union (KindList, KindMap, KindText,
// KindRecord, KindTable); the bubbler and undo inversion switch over it
// exhaustively. Out-of-range index or key access is silent (a no-op or
// nil result), never an error.
package modeldb
