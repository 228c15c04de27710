// Package ident implements the row identifier used throughout the service:
// a 160-bit value built from a 32-bit creation timestamp and a 128-bit
// random payload.
//
// The timestamp prefix makes identifiers sort by creation time (to the
// second) in both their raw-byte and base62 text forms. Uniqueness comes
// from the payload width alone; there is no counter and no coordination
// between generators.
//
// An ID has exactly two wire forms, each with an explicit encode/decode
// pair that are inverses of each other:
//   - Bytes/FromBytes: the raw 20-byte value, stored in a fixed-width
//     binary database column.
//   - String/Parse: the canonical 27-character base62 text, used in JSON
//     output and anywhere a human-readable form is needed.
package ident

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// rawLen is the raw identifier width: 4 timestamp bytes + 16 payload bytes.
	rawLen = 20

	// encodedLen is the fixed length of the canonical base62 text form.
	encodedLen = 27

	// epoch is the custom epoch (2014-05-13T16:53:20Z) the 32-bit timestamp
	// counts seconds from. Matches the KSUID epoch so encoded values stay
	// sortable well past 2100.
	epoch = 1400000000
)

// alphabet is the base62 digit set in ASCII order, so that lexicographic
// ordering of encoded strings matches numeric ordering of the raw value.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	// ErrInvalidLength is returned when a text form is not exactly 27
	// characters, or a byte form is not exactly 20 bytes.
	ErrInvalidLength = errors.New("ident: invalid length")

	// ErrInvalidAlphabet is returned when a text form contains a character
	// outside the base62 alphabet.
	ErrInvalidAlphabet = errors.New("ident: character outside base62 alphabet")

	// ErrInvalidEncoding is returned when a 27-character base62 string
	// decodes to a value wider than 160 bits.
	ErrInvalidEncoding = errors.New("ident: encoded value exceeds 160 bits")
)

// ID is a 160-bit row identifier. The zero value is not a valid generated
// identifier; obtain one from New or a decode function.
type ID [rawLen]byte

// New returns an identifier for the current wall-clock time.
func New() ID {
	return At(time.Now())
}

// At returns an identifier whose timestamp component is taken from t.
// The payload is drawn fresh on every call.
func At(t time.Time) ID {
	var id ID
	binary.BigEndian.PutUint32(id[:4], uint32(t.Unix()-epoch))
	binary.BigEndian.PutUint64(id[4:12], rand.Uint64())
	binary.BigEndian.PutUint64(id[12:], rand.Uint64())
	return id
}

// Time returns the creation time recorded in the identifier, at second
// resolution.
func (id ID) Time() time.Time {
	ts := binary.BigEndian.Uint32(id[:4])
	return time.Unix(int64(ts)+epoch, 0)
}

// Bytes returns the raw 20-byte storage form. The returned slice is a
// copy; mutating it does not affect the identifier.
func (id ID) Bytes() []byte {
	b := make([]byte, rawLen)
	copy(b, id[:])
	return b
}

// FromBytes reconstructs an identifier from its raw storage form. Any
// width other than 20 bytes fails with ErrInvalidLength.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != rawLen {
		return id, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), rawLen)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the canonical base62 text form, always 27 characters.
func (id ID) String() string {
	var dst [encodedLen]byte
	for i := range dst {
		dst[i] = '0'
	}

	// Repeated division of the big-endian value by 62, filling digits from
	// the right. Two buffers alternate between dividend and quotient so no
	// pass reads what it is writing.
	n := id[:]
	pos := encodedLen
	scratch := make([]byte, 0, rawLen)
	for len(n) > 0 {
		quot := scratch[:0]
		rem := 0
		for _, b := range n {
			acc := rem<<8 + int(b)
			digit := acc / 62
			rem = acc % 62
			if len(quot) > 0 || digit > 0 {
				quot = append(quot, byte(digit))
			}
		}
		pos--
		dst[pos] = alphabet[rem]
		n, scratch = quot, n
	}
	return string(dst[:])
}

// Parse decodes a canonical base62 text form. It never panics: malformed
// input fails with ErrInvalidLength, ErrInvalidAlphabet or
// ErrInvalidEncoding.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != encodedLen {
		return id, fmt.Errorf("%w: got %d characters, want %d", ErrInvalidLength, len(s), encodedLen)
	}
	for i := 0; i < len(s); i++ {
		v := digitValue(s[i])
		if v < 0 {
			return id, fmt.Errorf("%w: %q at position %d", ErrInvalidAlphabet, s[i], i)
		}
		// id = id*62 + v over the full 20-byte accumulator.
		carry := v
		for j := rawLen - 1; j >= 0; j-- {
			acc := int(id[j])*62 + carry
			id[j] = byte(acc)
			carry = acc >> 8
		}
		if carry > 0 {
			return ID{}, ErrInvalidEncoding
		}
	}
	return id, nil
}

// MarshalJSON renders the identifier as its canonical text form. There is
// no UnmarshalJSON: identifiers are never accepted from external input.
func (id ID) MarshalJSON() ([]byte, error) {
	// base62 never needs JSON escaping.
	return []byte(`"` + id.String() + `"`), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 36
	}
	return -1
}
