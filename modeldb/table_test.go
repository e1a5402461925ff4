package modeldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, db *DB) *Table {
	t.Helper()
	table, err := db.CreateTable(NewToken("things"))
	require.NoError(t, err)
	return table
}

func TestTable_InsertGetDelete(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	mustTransact(t, db, func() {
		table.Insert(r)
	})

	assert.Equal(t, 1, table.Len())
	assert.True(t, table.Has(r.ID()))
	assert.Same(t, r, table.Get(r.ID()))
	assert.Same(t, table, r.Parent().(*Table), "insertion makes the table the record's parent")
	assert.Nil(t, table.Get("missing"))

	mustTransact(t, db, func() {
		table.Delete(r.ID())
		table.Delete("missing") // silent no-op
	})
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, r.Parent(), "deletion orphans the record")
}

func TestTable_IsAlwaysRoot(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	assert.Nil(t, table.Parent())
	assert.Equal(t, KindTable, table.Kind())
}

func TestTable_InsertDeltas(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	rec := &recorder{}
	rec.watch(table)

	mustTransact(t, db, func() {
		table.Insert(r)
	})
	db.Drain()

	deliveries := rec.all()
	require.Len(t, deliveries, 1)
	change := deliveries[0].args.Changes[0].(*TableChange)
	assert.Equal(t, map[string]*Record{r.ID(): r}, change.Added)
	assert.Empty(t, change.Removed)
}

func TestTable_InsertThenDeleteSameTransactionVanishes(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	rec := &recorder{}
	rec.watch(table)

	mustTransact(t, db, func() {
		table.Insert(r)
		table.Delete(r.ID())
	})
	db.Drain()

	assert.Empty(t, rec.all())
	assert.False(t, db.CanUndo())
}

func TestTable_ReinsertIsNoop(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	mustTransact(t, db, func() {
		table.Insert(r)
		table.Insert(r)
	})
	assert.Equal(t, 1, table.Len())
}

func TestTable_InsertOwnedRecordPanics(t *testing.T) {
	db := newTestDB(t)
	first := newTestTable(t, db)
	second, err := db.CreateTable(NewToken("other"))
	require.NoError(t, err)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	mustTransact(t, db, func() {
		first.Insert(r)
	})
	assert.Panics(t, func() {
		_ = db.Transact(func() error {
			second.Insert(r)
			return nil
		})
	}, "a record has exactly one owner at a time")
}

func TestTable_Clear(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r1, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)
	r2, err := db.CreateRecord(map[string]any{"n": 2})
	require.NoError(t, err)

	mustTransact(t, db, func() {
		table.Insert(r1)
		table.Insert(r2)
	})
	mustTransact(t, db, func() {
		table.Clear()
	})

	assert.Equal(t, 0, table.Len())
	assert.Nil(t, r1.Parent())
	assert.Nil(t, r2.Parent())
}

func TestTable_RecordsOrderedByID(t *testing.T) {
	db := newTestDB(t)
	table := newTestTable(t, db)
	r1, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)
	r2, err := db.CreateRecord(map[string]any{"n": 2})
	require.NoError(t, err)

	mustTransact(t, db, func() {
		table.Insert(r2)
		table.Insert(r1)
	})

	recs := table.Records()
	require.Len(t, recs, 2)
	assert.True(t, recs[0].ID() < recs[1].ID())
}

func TestTable_CreateWithInitialRecords(t *testing.T) {
	db := newTestDB(t)
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	table, err := db.CreateTable(NewToken("seeded"), r)
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	assert.Same(t, table, r.Parent().(*Table))
	assert.False(t, db.CanUndo(), "seeding at creation is construction, not mutation")
}
