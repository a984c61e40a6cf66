package models

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

var (
	errEmptyHash     = errors.New("empty hash")
	errWidthMismatch = errors.New("hash width mismatch")
)

// PerceptualHash is a fixed-width fingerprint compared by Hamming distance.
type PerceptualHash []byte

// HashFromUint64 lays out a 64-bit hash most significant byte first.
func HashFromUint64(v uint64) PerceptualHash {
	return binary.BigEndian.AppendUint64(make(PerceptualHash, 0, 8), v)
}

// ParseHash decodes the base64 form produced by String.
func ParseHash(s string) (PerceptualHash, error) {
	if s == "" {
		return nil, &HashDecodeError{Hash: s, Err: errEmptyHash}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &HashDecodeError{Hash: s, Err: err}
	}
	if len(raw) == 0 {
		return nil, &HashDecodeError{Hash: s, Err: errEmptyHash}
	}
	return PerceptualHash(raw), nil
}

func (h PerceptualHash) String() string {
	return base64.StdEncoding.EncodeToString(h)
}

// Bits returns the hash width in bits.
func (h PerceptualHash) Bits() int {
	return len(h) * 8
}

// Distance counts the differing bits. Hashes of different widths are not comparable.
func (h PerceptualHash) Distance(other PerceptualHash) (int, error) {
	if len(h) != len(other) {
		return 0, &HashDecodeError{
			Hash: other.String(),
			Err:  fmt.Errorf("%w: %d != %d bits", errWidthMismatch, other.Bits(), h.Bits()),
		}
	}
	dist := 0
	for i := range h {
		dist += bits.OnesCount8(h[i] ^ other[i])
	}
	return dist, nil
}
