package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodup/internal/storage"
	"nodup/internal/testutil"
)

func newCounters(t *testing.T, kv storage.KVInterface) (*CounterService, *testutil.MockMetrics) {
	metrics := testutil.NewMockMetrics()
	return NewCounterService(kv, &testutil.MockLogger{}, metrics).(*CounterService), metrics
}

func TestCounter_IncrementCreatesAtOne(t *testing.T) {
	svc, _ := newCounters(t, newTestKV(t))

	rec, err := svc.Get("42", "alice")
	require.NoError(t, err)
	assert.Nil(t, rec)

	n, err := svc.Increment("42", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Increment("42", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCounter_DisplayNameLatestNonEmptyWins(t *testing.T) {
	svc, _ := newCounters(t, newTestKV(t))
	_, err := svc.Increment("42", "alice", "Alice")
	require.NoError(t, err)
	_, err = svc.Increment("42", "alice", "Alice B.")
	require.NoError(t, err)
	_, err = svc.Increment("42", "alice", "")
	require.NoError(t, err)

	rec, err := svc.Get("42", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", rec.DisplayName)
	assert.Equal(t, int64(3), rec.Count)
}

func TestCounter_ScanPerScope(t *testing.T) {
	svc, _ := newCounters(t, newTestKV(t))
	_, err := svc.Increment("42", "alice", "")
	require.NoError(t, err)
	_, err = svc.Increment("42", "bob", "Bob")
	require.NoError(t, err)
	_, err = svc.Increment("43", "carol", "")
	require.NoError(t, err)

	records, err := svc.Scan("42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Label())
	assert.Equal(t, "Bob", records[1].Label())
}

func TestCounter_ScanSkipsPoisonedRecords(t *testing.T) {
	kv := newTestKV(t)
	svc, metrics := newCounters(t, kv)
	_, err := svc.Increment("42", "alice", "")
	require.NoError(t, err)
	require.NoError(t, kv.Put(storage.BuildKey(storage.KindUser, "42", "mallory"), []byte("[]")))

	records, err := svc.Scan("42")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, metrics.Skipped["usr"])
}

func TestCounter_FailedPutDoesNotCount(t *testing.T) {
	failing := &testutil.FailingKV{KVInterface: newTestKV(t)}
	svc, _ := newCounters(t, failing)

	failing.Set(false, true, false, false)
	_, err := svc.Increment("42", "alice", "")
	assert.True(t, storage.IsStoreIOError(err))

	failing.Set(false, false, false, false)
	rec, err := svc.Get("42", "alice")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestConcurrent_IncrementCountsEveryCall(t *testing.T) {
	svc, _ := newCounters(t, newTestKV(t))
	const n = 50
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Increment("42", "alice", "Alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := svc.Get("42", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(n), rec.Count)
}

func TestCounter_PoisonedRecordRestartsAtOne(t *testing.T) {
	kv := newTestKV(t)
	svc, metrics := newCounters(t, kv)
	require.NoError(t, kv.Put(storage.BuildKey(storage.KindUser, "42", "alice"), []byte("[]")))

	rec, err := svc.Get("42", "alice")
	require.NoError(t, err)
	assert.Nil(t, rec)

	count, err := svc.Increment("42", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.Increment("42", "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 2, metrics.Skipped["usr"])
}
