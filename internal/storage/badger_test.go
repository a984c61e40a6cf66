package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryKV(t *testing.T) *BadgerKV {
	t.Helper()
	kv, err := NewBadgerKV("", true, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestBadgerKV_PutGetDelete(t *testing.T) {
	kv := newMemoryKV(t)
	key := BuildKey(KindOccurrence, "42", "https://x/y")

	_, err := kv.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsStoreIOError(err))

	require.NoError(t, kv.Put(key, []byte("v1")))
	val, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, kv.Delete(key))
	_, err = kv.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerKV_ScanIsScopedAndOrdered(t *testing.T) {
	kv := newMemoryKV(t)
	require.NoError(t, kv.Put(BuildKey(KindImage, "42", "b"), []byte("2")))
	require.NoError(t, kv.Put(BuildKey(KindImage, "42", "a"), []byte("1")))
	require.NoError(t, kv.Put(BuildKey(KindImage, "420", "a"), []byte("x")))
	require.NoError(t, kv.Put(BuildKey(KindOccurrence, "42", "a"), []byte("y")))

	pairs, err := kv.Scan(ScopePrefix(KindImage, "42"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "img/42/a", string(pairs[0].Key))
	assert.Equal(t, "img/42/b", string(pairs[1].Key))
	assert.Equal(t, []byte("1"), pairs[0].Value)
}

func TestBadgerKV_BackupAndLoad(t *testing.T) {
	src := newMemoryKV(t)
	require.NoError(t, src.Put([]byte("occ/1/a"), []byte("1")))
	require.NoError(t, src.Put([]byte("usr/1/u"), []byte("2")))

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))

	dst := newMemoryKV(t)
	empty, err := dst.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, dst.Load(&buf))
	empty, err = dst.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)

	val, err := dst.Get([]byte("usr/1/u"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), val)
}

func TestBadgerKV_ClosedReportsStoreIOError(t *testing.T) {
	kv, err := NewBadgerKV("", true, false)
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	err = kv.Put([]byte("k"), []byte("v"))
	require.Error(t, err)
	assert.True(t, IsStoreIOError(err))
}
