package storage

import (
	"bytes"
	"net/url"
)

// Kind names the logical store a key belongs to.
type Kind string

const (
	KindOccurrence Kind = "occ"
	KindImage      Kind = "img"
	KindUser       Kind = "usr"
)

const separator = '/'

// ScopePrefix returns "{kind}/{scope}/". The scope is path-escaped, so a scope
// containing '/' can never be a prefix of another scope's namespace.
func ScopePrefix(kind Kind, scope string) []byte {
	escaped := url.PathEscape(scope)
	buf := make([]byte, 0, len(kind)+len(escaped)+2)
	buf = append(buf, kind...)
	buf = append(buf, separator)
	buf = append(buf, escaped...)
	buf = append(buf, separator)
	return buf
}

// BuildKey returns "{kind}/{scope}/{tail}". The same input always yields the same bytes.
func BuildKey(kind Kind, scope, tail string) []byte {
	return append(ScopePrefix(kind, scope), tail...)
}

// KeyTail strips the scope prefix from key and returns the identity or hash part.
func KeyTail(prefix, key []byte) (string, bool) {
	if !bytes.HasPrefix(key, prefix) {
		return "", false
	}
	return string(key[len(prefix):]), true
}
