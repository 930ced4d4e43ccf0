package bcrypt

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encoded hashes look like "10$<b64 salt>$<b64 digest>". Only the first 23
// digest bytes are encoded, matching the traditional bcrypt truncation.
const digestLen = KeyLen - 1

var ErrBadHash = errors.New("bcrypt: malformed password hash")

var b64 = base64.RawStdEncoding

// Hash derives a password hash with a random salt at the given cost.
func Hash(password string, cost int) (string, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("bcrypt: read salt: %w", err)
	}
	key, err := Key(cost, salt, []byte(password))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d$%s$%s",
		cost,
		b64.EncodeToString(salt),
		b64.EncodeToString(key[:digestLen]),
	), nil
}

// Verify reports whether password matches the encoded hash.
// The digest comparison is constant-time.
func Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return false, ErrBadHash
	}
	cost, err := strconv.Atoi(parts[0])
	if err != nil {
		return false, fmt.Errorf("%w: bad cost: %w", ErrBadHash, err)
	}
	salt, err := b64.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("%w: bad salt: %w", ErrBadHash, err)
	}
	want, err := b64.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("%w: bad digest: %w", ErrBadHash, err)
	}
	if len(want) != digestLen {
		return false, ErrBadHash
	}

	key, err := Key(cost, salt, []byte(password))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key[:digestLen], want) == 1, nil
}
