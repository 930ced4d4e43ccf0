// Package bcrypt implements the bcrypt key derivation function over a salted
// Blowfish expanded-key schedule (Provos & Mazières, "A Future-Adaptable
// Password Scheme"). The raw KDF is exposed for callers that manage their own
// encoding; Hash/Verify provide a self-contained password-hash format used by
// the HTTP admin endpoints.
package bcrypt

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blowfish"
)

const (
	// SaltLen is the required salt length in bytes.
	SaltLen = 16
	// KeyLen is the derived key length in bytes.
	KeyLen = 24
	// MaxPasswordLen is the longest password the schedule accepts.
	MaxPasswordLen = 72

	MinCost     = 4
	MaxCost     = 31
	DefaultCost = 10
)

var (
	ErrBadSalt     = errors.New("bcrypt: salt must be exactly 16 bytes")
	ErrBadPassword = errors.New("bcrypt: password must be 1..72 bytes")
	ErrBadCost     = errors.New("bcrypt: cost out of range")
)

// "OrpheanBeholderScryDoubt"
var magic = []byte{
	0x4f, 0x72, 0x70, 0x68, 0x65, 0x61, 0x6e, 0x42,
	0x65, 0x68, 0x6f, 0x6c, 0x64, 0x65, 0x72, 0x53,
	0x63, 0x72, 0x79, 0x44, 0x6f, 0x75, 0x62, 0x74,
}

// Key derives a 24-byte key from password and salt at the given cost.
// The schedule runs 2^cost alternating expansions of password and salt over
// a salted Blowfish state, then encrypts the magic block 64 times.
func Key(cost int, salt, password []byte) ([]byte, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrBadCost, cost)
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("%w: got %d", ErrBadSalt, len(salt))
	}
	if len(password) == 0 || len(password) > MaxPasswordLen {
		return nil, fmt.Errorf("%w: got %d", ErrBadPassword, len(password))
	}

	c, err := blowfish.NewSaltedCipher(password, salt)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 1<<uint(cost); i++ {
		blowfish.ExpandKey(password, c)
		blowfish.ExpandKey(salt, c)
	}

	out := make([]byte, KeyLen)
	copy(out, magic)
	for i := 0; i < KeyLen; i += 8 {
		for j := 0; j < 64; j++ {
			c.Encrypt(out[i:i+8], out[i:i+8])
		}
	}
	return out, nil
}
