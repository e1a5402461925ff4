package modeldb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransact_NestedFailsWithReentrancyError(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()

	outer := db.Transact(func() error {
		l.Push(Int(1))
		err := db.Transact(func() error {
			l.Push(Int(2))
			return nil
		})
		assert.True(t, IsReentrancy(err))
		l.Push(Int(3))
		return nil
	})

	require.NoError(t, outer, "the outer transaction is unaffected")
	assert.Equal(t, []Value{Int(1), Int(3)}, l.Slice(), "the nested body must not have run")
}

func TestTransact_ErrorStillCommits(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()
	boom := errors.New("boom")

	err := db.Transact(func() error {
		l.Push(Int(1))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Value{Int(1)}, l.Slice(), "deltas buffered before the failure stay applied")
	assert.True(t, db.CanUndo(), "the partial transaction still creates a checkpoint")

	require.NoError(t, db.Undo())
	assert.Equal(t, 0, l.Len())
}

func TestTransact_PanicStillClosesTransaction(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()

	assert.Panics(t, func() {
		_ = db.Transact(func() error {
			l.Push(Int(1))
			panic("mid-transaction failure")
		})
	})

	assert.Equal(t, []Value{Int(1)}, l.Slice())

	// The transaction closed: a new one can open.
	mustTransact(t, db, func() {
		l.Push(Int(2))
	})
	assert.Equal(t, 2, l.Len())
}

func TestTransact_EmptyTransactionCreatesNoCheckpoint(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Transact(func() error { return nil }))
	assert.False(t, db.CanUndo())
}

func TestTransact_MetadataDefaults(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()

	rec := &recorder{}
	rec.watch(l)

	mustTransact(t, db, func() {
		l.Push(Int(1))
	})
	db.Drain()

	deliveries := rec.all()
	require.Len(t, deliveries, 1)
	meta := deliveries[0].args.Meta
	assert.True(t, meta.IsLocal)
	assert.False(t, meta.IsUndo)
	assert.False(t, meta.IsRedo)
	assert.Equal(t, LocalActor, meta.UserID)
	assert.Equal(t, LocalActor, meta.SessionID)
}

func TestTransactAs_CarriesActor(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()

	rec := &recorder{}
	rec.watch(l)

	require.NoError(t, db.TransactAs("alice", "session-1", func() error {
		l.Push(Int(1))
		return nil
	}))
	db.Drain()

	deliveries := rec.all()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "alice", deliveries[0].args.Meta.UserID)
	assert.Equal(t, "session-1", deliveries[0].args.Meta.SessionID)
}

func TestWithActor_SetsDefaultMetadata(t *testing.T) {
	db := New(WithIDGenerator(&FixedGenerator{}), WithActor("bob", "session-9"))
	t.Cleanup(db.Close)
	l := db.CreateList()

	rec := &recorder{}
	rec.watch(l)

	mustTransact(t, db, func() {
		l.Push(Int(1))
	})
	db.Drain()

	deliveries := rec.all()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "bob", deliveries[0].args.Meta.UserID)
	assert.Equal(t, "session-9", deliveries[0].args.Meta.SessionID)
}

func TestTransact_MultiObjectCommitOrder(t *testing.T) {
	db := newTestDB(t)
	l := db.CreateList()
	m := db.CreateMap()

	rec := &recorder{}
	rec.watch(l)
	rec.watch(m)

	mustTransact(t, db, func() {
		m.Set("k", Int(1)) // touched first
		l.Push(Int(2))
		m.Set("k2", Int(3))
	})
	db.Drain()

	deliveries := rec.all()
	require.Len(t, deliveries, 2, "one emission per touched object")
	assert.Same(t, m, deliveries[0].receiver, "first-touch order")
	assert.Same(t, l, deliveries[1].receiver)
}
