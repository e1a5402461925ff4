package modeldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_FactoriesProduceUnattachedObjects(t *testing.T) {
	db := newTestDB(t)

	l := db.CreateList(Int(1), Int(2))
	m := db.CreateMap()
	txt := db.CreateText("hi")
	r, err := db.CreateRecord(map[string]any{"n": 1})
	require.NoError(t, err)

	for _, obj := range []Object{l, m, txt, r} {
		assert.Nil(t, obj.Parent(), "freshly created objects are roots")
		assert.NotEmpty(t, obj.ID())
	}
	assert.Equal(t, KindList, l.Kind())
	assert.Equal(t, KindMap, m.Kind())
	assert.Equal(t, KindText, txt.Kind())
	assert.Equal(t, KindRecord, r.Kind())
}

func TestDB_CreateRecordRejectsOwnedCollection(t *testing.T) {
	db := newTestDB(t)

	items := db.CreateList(Int(1))
	owner, err := db.CreateRecord(map[string]any{"items": items})
	require.NoError(t, err)

	_, err = db.CreateRecord(map[string]any{"items": items, "n": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already owned")
	assert.Same(t, owner, items.Parent().(*Record), "the first record keeps its collection")
}

func TestDB_CreateRecordUnwindsAdoptionsOnFailure(t *testing.T) {
	db := newTestDB(t)

	items := db.CreateList()
	_, err := db.CreateRecord(map[string]any{"a": items, "b": struct{}{}})
	require.Error(t, err)
	assert.Nil(t, items.Parent(), "a failed create leaves no dangling owner")

	_, err = db.CreateRecord(map[string]any{"a": items})
	assert.NoError(t, err, "the collection is adoptable again")
}

func TestDB_IDsAreUnique(t *testing.T) {
	db := newTestDB(t)

	seen := make(map[string]bool)
	for range 10 {
		id := db.CreateList().ID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestDB_DefaultIDGeneratorIsUUID(t *testing.T) {
	db := New()
	t.Cleanup(db.Close)

	id := db.CreateList().ID()
	assert.Len(t, id, 36, "uuid string form")
}

func TestDB_CreateTableDuplicateToken(t *testing.T) {
	db := newTestDB(t)
	token := NewToken("docs")

	_, err := db.CreateTable(token)
	require.NoError(t, err)

	_, err = db.CreateTable(token)
	assert.True(t, IsTableExists(err))
}

func TestDB_TokenIdentityNotName(t *testing.T) {
	db := newTestDB(t)

	first := NewToken("docs")
	second := NewToken("docs")

	_, err := db.CreateTable(first)
	require.NoError(t, err)
	_, err = db.CreateTable(second)
	require.NoError(t, err, "distinct token values are distinct tables even with equal names")

	assert.True(t, db.HasTable(first))
	assert.True(t, db.HasTable(second))
}

func TestDB_GetTable(t *testing.T) {
	db := newTestDB(t)
	token := NewToken("docs")

	_, err := db.GetTable(token)
	assert.True(t, IsTableNotFound(err))

	created, err := db.CreateTable(token)
	require.NoError(t, err)

	got, err := db.GetTable(token)
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestDB_DeleteTable(t *testing.T) {
	db := newTestDB(t)
	token := NewToken("docs")

	assert.True(t, IsTableNotFound(db.DeleteTable(token)))

	_, err := db.CreateTable(token)
	require.NoError(t, err)

	require.NoError(t, db.DeleteTable(token))
	assert.False(t, db.HasTable(token))

	// The token is free for reuse after deletion.
	_, err = db.CreateTable(token)
	require.NoError(t, err)
}

func TestDB_TablesOrderedByTokenName(t *testing.T) {
	db := newTestDB(t)

	zebra, err := db.CreateTable(NewToken("zebra"))
	require.NoError(t, err)
	alpha, err := db.CreateTable(NewToken("alpha"))
	require.NoError(t, err)
	mango, err := db.CreateTable(NewToken("mango"))
	require.NoError(t, err)

	assert.Equal(t, []*Table{alpha, mango, zebra}, db.Tables())
}

func TestDB_TablesEqualNamesOrderedByID(t *testing.T) {
	db := newTestDB(t)

	first, err := db.CreateTable(NewToken("docs"))
	require.NoError(t, err)
	second, err := db.CreateTable(NewToken("docs"))
	require.NoError(t, err)

	tables := db.Tables()
	require.Len(t, tables, 2)
	assert.Same(t, first, tables[0], "FixedGenerator ids are lexically increasing")
	assert.Same(t, second, tables[1])
}

func TestDB_CloseDropsPendingNotifications(t *testing.T) {
	db := New(WithIDGenerator(&FixedGenerator{}))
	l := db.CreateList()

	l.Changed().Connect(func(ChangedArgs) {})
	mustTransact(t, db, func() { l.Push(Int(1)) })

	assert.NotPanics(t, db.Close)
	assert.NotPanics(t, db.Close, "close is idempotent")
}
