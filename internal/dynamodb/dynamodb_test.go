package dynamodb

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	reg := NewRegistry(identity.New("", ""))
	tbl, err := reg.CreateTable("widgets", []KeySchemaElement{
		{AttributeName: "pk", KeyType: "HASH"},
		{AttributeName: "sk", KeyType: "RANGE"},
	}, "2026-07-29T00:00:00Z")
	require.NoError(t, err)
	return tbl
}

func TestPutGetItemRoundTrip(t *testing.T) {
	tbl := newTestTable(t)
	item := Item{
		"pk":   {S: "user-1"},
		"sk":   {S: "profile"},
		"name": {S: "Ada"},
	}
	require.NoError(t, tbl.PutItem(item))

	got, err := tbl.GetItem(Item{"pk": {S: "user-1"}, "sk": {S: "profile"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got["name"].S)
}

func TestGetItemMissingReturnsNilNotError(t *testing.T) {
	tbl := newTestTable(t)
	item, err := tbl.GetItem(Item{"pk": {S: "nope"}, "sk": {S: "nope"}})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestPutItemMissingHashKeyIsInvalidArgument(t *testing.T) {
	tbl := newTestTable(t)
	err := tbl.PutItem(Item{"sk": {S: "profile"}})
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.InvalidArgument, kind)
}

func TestQueryRestrictsToHashKey(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}}))
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-1"}, "sk": {S: "b"}}))
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-2"}, "sk": {S: "a"}}))

	items := tbl.Query(AttributeValue{S: "user-1"})
	assert.Len(t, items, 2)
}

func TestScanReturnsEveryItem(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}}))
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-2"}, "sk": {S: "a"}}))

	assert.Len(t, tbl.Scan(), 2)
}

func TestDeleteItemReturnsPriorValueForReturnValues(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}, "n": {N: "1"}}))

	old, err := tbl.DeleteItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}})
	require.NoError(t, err)
	assert.Equal(t, "1", old["n"].N)

	got, err := tbl.GetItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateItemSetAndRemove(t *testing.T) {
	tbl := newTestTable(t)
	key := Item{"pk": {S: "user-1"}, "sk": {S: "a"}}
	require.NoError(t, tbl.PutItem(Item{"pk": {S: "user-1"}, "sk": {S: "a"}, "name": {S: "Ada"}, "age": {N: "30"}}))

	before, after, err := tbl.UpdateItem(key, []UpdateAction{
		{Attribute: "name", Value: AttributeValue{S: "Grace"}},
		{Attribute: "age", Remove: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", before["name"].S)
	assert.Equal(t, "Grace", after["name"].S)
	_, hasAge := after["age"]
	assert.False(t, hasAge)

	got, err := tbl.GetItem(key)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got["name"].S)
}

func TestUpdateItemOnMissingItemCreatesItWithKey(t *testing.T) {
	tbl := newTestTable(t)
	key := Item{"pk": {S: "user-9"}, "sk": {S: "z"}}

	before, after, err := tbl.UpdateItem(key, []UpdateAction{
		{Attribute: "name", Value: AttributeValue{S: "New"}},
	})
	require.NoError(t, err)
	assert.Nil(t, before)
	assert.Equal(t, "New", after["name"].S)
	assert.Equal(t, "user-9", after["pk"].S)
}

func TestCreateTableIsIdempotentByName(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	t1, err := reg.CreateTable("widgets", []KeySchemaElement{{AttributeName: "pk", KeyType: "HASH"}}, "now")
	require.NoError(t, err)
	t2, err := reg.CreateTable("widgets", []KeySchemaElement{{AttributeName: "pk", KeyType: "HASH"}}, "later")
	require.NoError(t, err)
	assert.Same(t, t1, t2)
}

func TestGetTableMissingIsNotFound(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, err := reg.Get("missing")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}

func TestListTablesSorted(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, _ = reg.CreateTable("zebra", nil, "now")
	_, _ = reg.CreateTable("apple", nil, "now")
	assert.Equal(t, []string{"apple", "zebra"}, reg.ListTables())
}
