package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(attrs map[string]string) Item {
	it := make(Item, len(attrs))
	for k, v := range attrs {
		it[k] = &types.AttributeValueMemberS{Value: v}
	}
	return it
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, item(map[string]string{"PK": "USER#u1", "SK": "PROFILE", "name": "Ada"}), false))

	got, err := s.Get(ctx, "USER#u1", "PROFILE")
	require.NoError(t, err)
	assert.Equal(t, "Ada", StringAttr(got, "name"))

	missing, err := s.Get(ctx, "USER#u2", "PROFILE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStoreConditionalPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	it := item(map[string]string{"PK": "USER#u1", "SK": "PROFILE"})
	require.NoError(t, s.Put(ctx, it, true))

	err := s.Put(ctx, it, true)
	require.Error(t, err)
	assert.True(t, IsConditionFailed(err))

	// Unconditional overwrite still succeeds.
	require.NoError(t, s.Put(ctx, it, false))
}

func TestMemoryStoreQueryPrefixOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, sk := range []string{"LECTURE#c", "LECTURE#a", "LECTURE#b", "METADATA"} {
		require.NoError(t, s.Put(ctx, item(map[string]string{"PK": "COURSE#c1", "SK": sk}), false))
	}

	out, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", SKPrefix: "LECTURE#", Forward: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "LECTURE#a", StringAttr(out.Items[0], "SK"))
	assert.Equal(t, "LECTURE#c", StringAttr(out.Items[2], "SK"))

	reversed, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", SKPrefix: "LECTURE#"})
	require.NoError(t, err)
	assert.Equal(t, "LECTURE#c", StringAttr(reversed.Items[0], "SK"))
}

func TestMemoryStoreQueryIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, item(map[string]string{
		"PK": "USER#u1", "SK": "ENROLLMENT#c1",
		"GSI2PK": "COURSE#c1", "GSI2SK": "ENROLLMENT#u1",
	}), false))
	require.NoError(t, s.Put(ctx, item(map[string]string{
		"PK": "USER#u2", "SK": "ENROLLMENT#c1",
		"GSI2PK": "COURSE#c1", "GSI2SK": "ENROLLMENT#u2",
	}), false))
	require.NoError(t, s.Put(ctx, item(map[string]string{
		"PK": "USER#u3", "SK": "ENROLLMENT#c2",
		"GSI2PK": "COURSE#c2", "GSI2SK": "ENROLLMENT#u3",
	}), false))

	out, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", IndexName: "GSI2", Forward: true})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	count, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", IndexName: "GSI2", Count: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), count.Count)
	assert.Empty(t, count.Items)
}

func TestMemoryStoreQueryPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, sk := range []string{"LECTURE#a", "LECTURE#b", "LECTURE#c", "LECTURE#d"} {
		require.NoError(t, s.Put(ctx, item(map[string]string{"PK": "COURSE#c1", "SK": sk}), false))
	}

	first, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", SKPrefix: "LECTURE#", Forward: true, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	require.NotNil(t, first.LastKey)

	second, err := s.Query(ctx, QueryInput{PK: "COURSE#c1", SKPrefix: "LECTURE#", Forward: true, Limit: 3, StartKey: first.LastKey})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Nil(t, second.LastKey)
	assert.Equal(t, "LECTURE#d", StringAttr(second.Items[0], "SK"))
}

func TestMemoryStoreUpdateCounters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, item(map[string]string{"PK": "USER#u1", "SK": "PROFILE"}), false))

	// First increment on a missing attribute starts from zero.
	require.NoError(t, s.Update(ctx, "USER#u1", "PROFILE", []Mutation{Add("loginCount", 1)}, true))
	require.NoError(t, s.Update(ctx, "USER#u1", "PROFILE", []Mutation{Add("loginCount", 1)}, true))

	got, err := s.Get(ctx, "USER#u1", "PROFILE")
	require.NoError(t, err)
	n := got["loginCount"].(*types.AttributeValueMemberN)
	assert.Equal(t, "2", n.Value)

	err = s.Update(ctx, "USER#u1", "PROFILE", nil, true)
	assert.Error(t, err)

	err = s.Update(ctx, "USER#nope", "PROFILE", []Mutation{Set("name", "x")}, true)
	assert.True(t, IsConditionFailed(err))
}

func TestMemoryStoreScanFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		u := string(rune('a' + i))
		require.NoError(t, s.Put(ctx, item(map[string]string{
			"PK": "USER#" + u, "SK": "PROFILE", "entityType": "User", "role": "student",
		}), false))
	}
	require.NoError(t, s.Put(ctx, item(map[string]string{
		"PK": "COURSE#c1", "SK": "METADATA", "entityType": "Course",
	}), false))

	out, err := s.Scan(ctx, ScanInput{Filter: ScanFilter{EntityType: "User", Equals: map[string]string{"role": "student"}}})
	require.NoError(t, err)
	assert.Len(t, out.Items, 5)
	assert.Equal(t, int32(6), out.ScannedCount)

	// Paged scan resumes from LastKey without revisiting items.
	var collected int
	var startKey Item
	for {
		page, err := s.Scan(ctx, ScanInput{Filter: ScanFilter{EntityType: "User"}, Limit: 2, StartKey: startKey})
		require.NoError(t, err)
		collected += len(page.Items)
		if page.LastKey == nil {
			break
		}
		startKey = page.LastKey
	}
	assert.Equal(t, 5, collected)
}

func TestMemoryStoreBatchWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ops := []WriteOp{
		{Put: item(map[string]string{"PK": "COURSE#c1", "SK": "METADATA"})},
		{Put: item(map[string]string{"PK": "COURSE#c1", "SK": "LECTURE#l1"})},
	}
	require.NoError(t, s.BatchWrite(ctx, ops))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.BatchWrite(ctx, []WriteOp{
		{DeletePK: "COURSE#c1", DeleteSK: "METADATA"},
		{DeletePK: "COURSE#c1", DeleteSK: "LECTURE#l1"},
	}))
	assert.Equal(t, 0, s.Len())

	tooMany := make([]WriteOp, BatchLimit+1)
	for i := range tooMany {
		tooMany[i] = WriteOp{DeletePK: "X", DeleteSK: "Y"}
	}
	assert.Error(t, s.BatchWrite(ctx, tooMany))
}
