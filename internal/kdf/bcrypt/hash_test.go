package bcrypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	encoded, err := Hash("s3cret", MinCost)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(encoded, "$")))

	ok, err := Verify("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, err := Hash("same-password", MinCost)
	require.NoError(t, err)
	b, err := Hash("same-password", MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "missing parts", encoded: "10$onlysalt"},
		{name: "non-numeric cost", encoded: "ten$AAAA$BBBB"},
		{name: "bad salt b64", encoded: "10$!!!!$BBBB"},
		{name: "bad digest b64", encoded: "10$AAAAAAAAAAAAAAAAAAAAAA$!!!!"},
		{name: "short digest", encoded: "10$AAAAAAAAAAAAAAAAAAAAAA$AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify("pw", tt.encoded)
			assert.ErrorIs(t, err, ErrBadHash)
		})
	}
}
