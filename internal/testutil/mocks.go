package testutil

import (
	"errors"
	"sync"
	"time"

	"nodup/internal/providers"
	"nodup/internal/storage"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and counts dedup events.
type MockMetrics struct {
	mu        sync.Mutex
	Outcomes  map[string]int
	Lookups   map[string]int
	Evictions map[string]int
	Skipped   map[string]int
	Persisted int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Outcomes:  make(map[string]int),
		Lookups:   make(map[string]int),
		Evictions: make(map[string]int),
		Skipped:   make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) IncOutcome(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[status]++
}

func (m *MockMetrics) IncImageLookup(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups[result]++
}

func (m *MockMetrics) AddImageEvictions(mode string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evictions[mode] += count
}

func (m *MockMetrics) IncSkippedRecords(store string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped[store]++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements backup/interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// ErrInjected is the cause wrapped in every StoreIOError produced by FailingKV.
var ErrInjected = errors.New("injected failure")

// FailingKV wraps a storage.KVInterface and fails the operations whose flag is set.
type FailingKV struct {
	storage.KVInterface

	mu         sync.Mutex
	FailGet    bool
	FailPut    bool
	FailDelete bool
	FailScan   bool
}

func (f *FailingKV) fail(op string, key []byte, on bool) error {
	if !on {
		return nil
	}
	return &storage.StoreIOError{Op: op, Key: key, Err: ErrInjected}
}

func (f *FailingKV) Set(get, put, del, scan bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailGet, f.FailPut, f.FailDelete, f.FailScan = get, put, del, scan
}

func (f *FailingKV) Get(key []byte) ([]byte, error) {
	f.mu.Lock()
	err := f.fail("get", key, f.FailGet)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.KVInterface.Get(key)
}

func (f *FailingKV) Put(key, value []byte) error {
	f.mu.Lock()
	err := f.fail("put", key, f.FailPut)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.KVInterface.Put(key, value)
}

func (f *FailingKV) Delete(key []byte) error {
	f.mu.Lock()
	err := f.fail("delete", key, f.FailDelete)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.KVInterface.Delete(key)
}

func (f *FailingKV) Scan(prefix []byte) ([]storage.KVPair, error) {
	f.mu.Lock()
	err := f.fail("scan", prefix, f.FailScan)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.KVInterface.Scan(prefix)
}
