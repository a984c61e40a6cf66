package models

import "fmt"

// DecodeError reports a stored value that does not parse into its record shape.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HashDecodeError reports a malformed perceptual hash string.
type HashDecodeError struct {
	Hash string
	Err  error
}

func (e *HashDecodeError) Error() string {
	return fmt.Sprintf("decode hash %q: %v", e.Hash, e.Err)
}

func (e *HashDecodeError) Unwrap() error { return e.Err }
