package hash

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", h)

	assert.True(t, CheckPassword(h, "Secret123"))
	assert.False(t, CheckPassword(h, "secret123"))
	assert.False(t, CheckPassword("not-a-hash", "Secret123"))
}

func TestNumericCode_SixDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := NumericCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestHashPassword_RejectsOverlong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
}
