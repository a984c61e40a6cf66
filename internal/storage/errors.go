package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key is absent. It is not an I/O failure.
var ErrNotFound = errors.New("key not found")

// StoreIOError reports a persistence failure on get/put/delete/scan.
type StoreIOError struct {
	Op  string
	Key []byte
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// IsStoreIOError reports whether err (or anything it wraps) is a *StoreIOError.
func IsStoreIOError(err error) bool {
	var ioErr *StoreIOError
	return errors.As(err, &ioErr)
}
