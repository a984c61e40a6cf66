package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

const maxPendingWrites = 256

// BadgerKV implements KVInterface and SnapshotInterface on top of Badger.
type BadgerKV struct {
	db *badger.DB
}

// NewBadgerKV opens a Badger database in dir, or a purely in-memory one.
func NewBadgerKV(dir string, inMemory, syncWrites bool) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = syncWrites && !inMemory

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

func (b *BadgerKV) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreIOError{Op: "get", Key: key, Err: err}
	}
	return value, nil
}

func (b *BadgerKV) Put(key, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return &StoreIOError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (b *BadgerKV) Delete(key []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return &StoreIOError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (b *BadgerKV) Scan(prefix []byte) ([]KVPair, error) {
	var pairs []KVPair
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			pairs = append(pairs, KVPair{Key: item.KeyCopy(nil), Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, &StoreIOError{Op: "scan", Key: prefix, Err: err}
	}
	return pairs, nil
}

// Backup writes a full Badger backup stream to w.
func (b *BadgerKV) Backup(w io.Writer) error {
	if _, err := b.db.Backup(w, 0); err != nil {
		return &StoreIOError{Op: "backup", Err: err}
	}
	return nil
}

// Load replays a backup stream produced by Backup.
func (b *BadgerKV) Load(r io.Reader) error {
	if err := b.db.Load(r, maxPendingWrites); err != nil {
		return &StoreIOError{Op: "load", Err: err}
	}
	return nil
}

// IsEmpty reports whether the database holds no keys at all.
func (b *BadgerKV) IsEmpty() (bool, error) {
	empty := true
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Rewind()
		empty = !it.Valid()
		return nil
	})
	if err != nil {
		return false, &StoreIOError{Op: "scan", Err: err}
	}
	return empty, nil
}

func (b *BadgerKV) Close() error {
	return b.db.Close()
}
