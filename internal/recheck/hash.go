package recheck

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// HashKind identifies the digest algorithm behind a Hash.
type HashKind int

const (
	SHA1 HashKind = iota
	SHA256
)

func (k HashKind) String() string {
	switch k {
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	default:
		return fmt.Sprintf("HashKind(%d)", int(k))
	}
}

const (
	sha1Size   = 20
	sha256Size = 32
)

// ErrHashLength is returned when hash text decodes cleanly but is neither
// 20 nor 32 bytes wide.
var ErrHashLength = errors.New("hash must be 40 or 64 hex characters")

// Hash is a commit digest: either a SHA-1 or a SHA-256 value. The byte
// width alone determines the kind, so a value parsed from 40 hex characters
// is always SHA-1 and one parsed from 64 is always SHA-256. Hashes are
// immutable and comparable with ==; values of different kinds are never
// equal.
type Hash struct {
	kind HashKind
	buf  [sha256Size]byte
}

// ParseHash decodes the canonical lowercase-hex text form of a Hash.
// Non-hex input and input of the wrong length are distinct errors; the
// latter wraps ErrHashLength.
func ParseHash(s string) (Hash, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decoding hash %q: %w", s, err)
	}

	var h Hash
	switch len(raw) {
	case sha1Size:
		h.kind = SHA1
	case sha256Size:
		h.kind = SHA256
	default:
		return Hash{}, fmt.Errorf("hash %q is %d characters: %w", s, len(s), ErrHashLength)
	}
	copy(h.buf[:], raw)
	return h, nil
}

// Kind reports which digest algorithm this Hash carries.
func (h Hash) Kind() HashKind { return h.kind }

// Bytes returns the raw digest bytes. The slice is a view for comparison
// and serialization; callers must not modify it.
func (h Hash) Bytes() []byte {
	if h.kind == SHA1 {
		return h.buf[:sha1Size]
	}
	return h.buf[:sha256Size]
}

// String renders the canonical lowercase hex form. ParseHash(h.String())
// reproduces h exactly.
func (h Hash) String() string {
	return hex.EncodeToString(h.Bytes())
}

// MarshalText implements encoding.TextMarshaler so the TOML store and flag
// parsing share one codec.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
