package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOccurrence(t *testing.T) {
	value, err := EncodeRecord(&OccurrenceRecord{Identity: "https://x/y", Count: 2, FirstLink: "l", FirstUser: "u"})
	require.NoError(t, err)

	rec, err := DecodeOccurrence("occ/42/https://x/y", value)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Count)
	assert.Equal(t, "l", rec.FirstLink)
}

func TestDecodeOccurrence_Poisoned(t *testing.T) {
	tests := map[string][]byte{
		"not json":    []byte("{"),
		"zero count":  []byte(`{"identity":"x","count":0}`),
		"no identity": []byte(`{"count":3}`),
		"wrong type":  []byte(`{"identity":"x","count":"three"}`),
	}
	for name, value := range tests {
		_, err := DecodeOccurrence("k", value)
		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr), name)
	}
}

func TestDecodeImageIndexEntry_KeepsKeyFields(t *testing.T) {
	touched := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	value, err := EncodeRecord(&ImageIndexEntry{Scope: "ignored", Hash: "ignored", Identity: "img", Touched: touched})
	require.NoError(t, err)
	assert.NotContains(t, string(value), "ignored")

	entry, err := DecodeImageIndexEntry("img/42/AAA=", "42", "AAA=", value)
	require.NoError(t, err)
	assert.Equal(t, "42", entry.Scope)
	assert.Equal(t, "AAA=", entry.Hash)
	assert.True(t, entry.Touched.Equal(touched))

	_, err = DecodeImageIndexEntry("k", "42", "AAA=", []byte(`{"touched":"2024-01-01T00:00:00Z"}`))
	assert.Error(t, err)
}

func TestImageIndexEntry_Expired(t *testing.T) {
	now := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	ttl := 240 * time.Hour
	e := &ImageIndexEntry{Touched: now.Add(-ttl)}
	assert.False(t, e.Expired(now, ttl))

	e.Touched = now.Add(-ttl - time.Nanosecond)
	assert.True(t, e.Expired(now, ttl))
}

func TestUserCounter_DecodeAndLabel(t *testing.T) {
	rec, err := DecodeUserCounter("usr/42/7", []byte(`{"user_id":"7","count":1}`))
	require.NoError(t, err)
	assert.Equal(t, "7", rec.Label())

	rec.DisplayName = "Alice"
	assert.Equal(t, "Alice", rec.Label())

	_, err = DecodeUserCounter("usr/42/7", []byte(`{"user_id":"7","count":-1}`))
	assert.Error(t, err)
}
