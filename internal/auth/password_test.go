package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	record, err := HashPassword("admin123")
	require.NoError(t, err)

	saltHex, keyHex, ok := strings.Cut(record, ":")
	require.True(t, ok)
	assert.Len(t, saltHex, saltLength*2)
	assert.Len(t, keyHex, keyLength*2)

	assert.True(t, VerifyPassword("admin123", record))
	assert.False(t, VerifyPassword("wrong", record))
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword("same", a))
	assert.True(t, VerifyPassword("same", b))
}

func TestVerifyPasswordMalformedRecords(t *testing.T) {
	cases := []string{
		"",
		"no-separator",
		"zz:zz",        // not hex
		"abcd:",        // empty key
		"abcd:xyz",     // key not hex
		"abcd:abcd:ef", // extra separator lands in the key part
	}
	for _, record := range cases {
		assert.False(t, VerifyPassword("anything", record), "record %q", record)
	}
}
