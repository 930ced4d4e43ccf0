package bcrypt

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

const (
	saltA = "10410410410410410410410410410410"
	saltB = "65965965965965965965965965965965"
	saltC = "05030085d5ed4c176b2ac3cbee47291c"
	saltD = "71d79f8218a39259a7a29aabb2dbafc3"
)

// Openwall test vectors (crypt_blowfish suite). Inputs carry the C-string
// terminating NUL where the original suite does; only the first 23 output
// bytes are checked, matching the traditional bcrypt truncation.
func TestKey_OpenwallVectors(t *testing.T) {
	longAlnum := []byte("0123456789abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	tests := []struct {
		name   string
		input  []byte
		salt   string
		output string
	}{
		{
			name:   "U*U",
			input:  []byte{0x55, 0x2A, 0x55, 0x00},
			salt:   saltA,
			output: "1bb69143f9a8d304c8d23d99ab049a77a68e2ccc744206",
		},
		{
			name:   "U*U*",
			input:  []byte{0x55, 0x2A, 0x55, 0x2A, 0x00},
			salt:   saltA,
			output: "5c84350bdfbaa96ac16f615ae79f35cfdacd682d369f23",
		},
		{
			name:   "U*U*U",
			input:  []byte{0x55, 0x2A, 0x55, 0x2A, 0x55, 0x00},
			salt:   saltB,
			output: "09e673a3f9a544818eb8dd69a8cb28b32f6f7be604cfa7",
		},
		{
			name:   "long alnum",
			input:  longAlnum,
			salt:   saltD,
			output: "eeee31f80919920425881002d140d555b28a5c72e00f09",
		},
		{
			name:   "0xff 0xff 0xa3",
			input:  []byte{0xFF, 0xFF, 0xA3, 0x00},
			salt:   saltC,
			output: "106ee09c971c43a19d8a25c595df91dff4f09b56543b98",
		},
		{
			name:   "0xa3",
			input:  []byte{0xA3, 0x00},
			salt:   saltC,
			output: "51cf6e8dda3a010d4caf11e9677ad2368498ffca969c4b",
		},
		{
			name:   "0xff 0xa3 345 with prefix",
			input:  []byte{0xFF, 0xA3, 0x33, 0x34, 0xFF, 0xFF, 0xFF, 0xA3, 0x33, 0x34, 0x35, 0x00},
			salt:   saltC,
			output: "a80069e3b657869f2a091716c4980012e9bad5386e6919",
		},
		{
			name:   "0xff 0xa3 345",
			input:  []byte{0xFF, 0xA3, 0x33, 0x34, 0x35, 0x00},
			salt:   saltC,
			output: "a538efe270494e3b7cd6812bff1696c71bacd2986787f8",
		},
		{
			name:   "0xa3 ab",
			input:  []byte{0xA3, 0x61, 0x62, 0x00},
			salt:   saltC,
			output: "f0a8674a62f4bea4d77b7d3070fbc9864c2c0074e750a5",
		},
		{
			name:   "72 x 0xaa",
			input:  bytes.Repeat([]byte{0xAA}, 72),
			salt:   saltC,
			output: "bb24902b595090bfc82464708c69b1b2d5b4c588c63b3f",
		},
		{
			name:   "36 x 0xaa55",
			input:  bytes.Repeat([]byte{0xAA, 0x55}, 36),
			salt:   saltC,
			output: "4ffced1659347b339d486e1dac0c62b276ab63bcb3e34d",
		},
		{
			name:   "24 x 0x55aaff",
			input:  bytes.Repeat([]byte{0x55, 0xAA, 0xFF}, 24),
			salt:   saltC,
			output: "fef49bd5e2e1a39c25e0fc4b069ef39a3aec36d3ab6048",
		},
		{
			name:   "empty C string",
			input:  []byte{0x00},
			salt:   saltA,
			output: "f702365c4d4ae1d53d97cd28b0b93f11f79fce44d560fd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Key(5, mustHex(t, tt.salt), tt.input)
			require.NoError(t, err)
			require.Len(t, key, KeyLen)
			assert.Equal(t, mustHex(t, tt.output), key[:23])
		})
	}
}

func TestKey_InputValidation(t *testing.T) {
	salt := mustHex(t, saltA)

	_, err := Key(5, salt[:8], []byte("pw"))
	assert.ErrorIs(t, err, ErrBadSalt)

	_, err = Key(5, salt, nil)
	assert.ErrorIs(t, err, ErrBadPassword)

	_, err = Key(5, salt, bytes.Repeat([]byte{0x61}, 73))
	assert.ErrorIs(t, err, ErrBadPassword)

	_, err = Key(3, salt, []byte("pw"))
	assert.ErrorIs(t, err, ErrBadCost)

	_, err = Key(32, salt, []byte("pw"))
	assert.ErrorIs(t, err, ErrBadCost)
}
