package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	tr := New("idx_age", 2)
	for i := int64(1); i <= 20; i++ {
		tr.Insert(i, i*10)
	}
	for i := int64(1); i <= 20; i++ {
		v, ok := tr.Get(i)
		require.True(t, ok)
		assert.Equal(t, i*10, v)
	}
	_, ok := tr.Get(int64(999))
	assert.False(t, ok)
}

func TestTraversalIsAscending(t *testing.T) {
	tr := New("idx", 2)
	for _, k := range []int64{5, 3, 9, 1, 7, 2, 8, 4, 6} {
		tr.Insert(k, k)
	}
	kvs := tr.Traversal()
	require.Len(t, kvs, 9)
	for i := 1; i < len(kvs); i++ {
		assert.Less(t, keyFloat(kvs[i-1].Key), keyFloat(kvs[i].Key))
	}
}

func TestDeleteShrinksAndPreservesOrder(t *testing.T) {
	tr := New("idx", 2)
	for i := int64(1); i <= 30; i++ {
		tr.Insert(i, i)
	}
	for i := int64(1); i <= 30; i += 2 {
		assert.True(t, tr.Delete(i))
	}
	kvs := tr.Traversal()
	require.Len(t, kvs, 15)
	for _, kv := range kvs {
		assert.Equal(t, int64(0), int64(keyFloat(kv.Key))%2)
	}
	assert.False(t, tr.Delete(int64(1)))
}

func TestGetRangeBounds(t *testing.T) {
	tr := New("idx", 3)
	for i := int64(0); i < 50; i++ {
		tr.Insert(i, i)
	}

	lo, hi := int64(10), int64(20)
	kvs := tr.GetRange(lo, true, hi, true)
	assert.Len(t, kvs, 11) // [10,20]

	kvs = tr.GetRange(lo, false, hi, false)
	assert.Len(t, kvs, 9) // (10,20)

	kvs = tr.GetRange(nil, true, hi, true)
	assert.Len(t, kvs, 21) // [0,20]

	kvs = tr.GetRange(lo, true, nil, true)
	assert.Len(t, kvs, 40) // [10,49]
}

func TestUpdateItemAndKey(t *testing.T) {
	tr := New("idx", 2)
	tr.Insert(int64(1), "alice")
	tr.Insert(int64(2), "bob")

	require.NoError(t, tr.UpdateItem(int64(1), "alicia"))
	v, _ := tr.Get(int64(1))
	assert.Equal(t, "alicia", v)

	key, ok := tr.GetKey("bob")
	require.True(t, ok)
	assert.Equal(t, int64(2), key)

	require.NoError(t, tr.UpdateKey(int64(2), int64(2)))
}

func TestLargeVolumeRoundTrip(t *testing.T) {
	tr := New("idx", 4)
	const n = 500
	for i := int64(0); i < n; i++ {
		tr.Insert(i, i*2)
	}
	assert.Equal(t, n, tr.Len())
	for i := int64(0); i < n; i += 3 {
		assert.True(t, tr.Delete(i))
	}
	kvs := tr.Traversal()
	for i := 1; i < len(kvs); i++ {
		assert.Less(t, keyFloat(kvs[i-1].Key), keyFloat(kvs[i].Key))
	}
}
