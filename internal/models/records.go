package models

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

var (
	errInvalidCount    = errors.New("count must be at least 1")
	errMissingIdentity = errors.New("missing identity")
)

// OccurrenceRecord tracks every sighting of one canonical identity inside a scope.
// FirstLink and FirstUser are set on the first sighting and never rewritten.
type OccurrenceRecord struct {
	Identity  string `json:"identity"`
	Count     int64  `json:"count"`
	FirstLink string `json:"first_link,omitempty"`
	FirstUser string `json:"first_user,omitempty"`
}

// ImageIndexEntry maps a perceptual hash to the identity that represents it.
// Scope and Hash live in the key, only Identity and Touched are stored in the value.
type ImageIndexEntry struct {
	Scope    string    `json:"-"`
	Hash     string    `json:"-"`
	Identity string    `json:"identity"`
	Touched  time.Time `json:"touched"`
}

// Expired reports whether the entry is older than ttl at now.
func (e *ImageIndexEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Touched) > ttl
}

// UserCounterRecord counts how many repeats a user has posted in a scope.
type UserCounterRecord struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Count       int64  `json:"count"`
}

// Label is the name shown on leaderboards.
func (r *UserCounterRecord) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.UserID
}

func EncodeRecord(v any) ([]byte, error) {
	return json.Marshal(v)
}

func DecodeOccurrence(key string, value []byte) (*OccurrenceRecord, error) {
	var rec OccurrenceRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}
	if rec.Identity == "" {
		return nil, &DecodeError{Key: key, Err: errMissingIdentity}
	}
	if rec.Count < 1 {
		return nil, &DecodeError{Key: key, Err: errInvalidCount}
	}
	return &rec, nil
}

func DecodeImageIndexEntry(key, scope, hash string, value []byte) (*ImageIndexEntry, error) {
	entry := ImageIndexEntry{Scope: scope, Hash: hash}
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}
	if entry.Identity == "" {
		return nil, &DecodeError{Key: key, Err: errMissingIdentity}
	}
	return &entry, nil
}

func DecodeUserCounter(key string, value []byte) (*UserCounterRecord, error) {
	var rec UserCounterRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}
	if rec.Count < 1 {
		return nil, &DecodeError{Key: key, Err: errInvalidCount}
	}
	return &rec, nil
}
