package services

import "errors"

var (
	// ErrAlreadyRecorded is returned by RecordFirst for an identity that is already stored.
	ErrAlreadyRecorded = errors.New("identity already recorded")
	// ErrNotRecorded is returned by RecordRepeat for an identity that was never stored.
	ErrNotRecorded = errors.New("identity not recorded")
	// ErrEmptyScope is returned when an operation is called without a scope.
	ErrEmptyScope = errors.New("scope is required")
)
