package storage

import "io"

// KVPair is a single key/value returned by a prefix scan.
type KVPair struct {
	Key   []byte
	Value []byte
}

// KVInterface is the ordered byte-key substrate shared by every store.
// Get returns ErrNotFound for absent keys. Any other failure is a *StoreIOError.
// Scan returns pairs in lexicographic order of the raw key bytes.
type KVInterface interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Scan(prefix []byte) ([]KVPair, error)
	Close() error
}

// SnapshotInterface streams the whole substrate in and out for periodic backups.
type SnapshotInterface interface {
	Backup(w io.Writer) error
	Load(r io.Reader) error
	IsEmpty() (bool, error)
}
