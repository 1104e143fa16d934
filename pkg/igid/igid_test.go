package igid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCode(t *testing.T) {
	id, err := ExpandCode("BRo7njqD75U")
	require.NoError(t, err)
	assert.Equal(t, uint64(1470687481426853460), id)
}

func TestShortenID(t *testing.T) {
	assert.Equal(t, "BRo7njqD75U", ShortenID(1470687481426853460))
	assert.Equal(t, "A", ShortenID(0))
	assert.Equal(t, "_", ShortenID(63))
	assert.Equal(t, "BA", ShortenID(64))
}

func TestShortenMediaID(t *testing.T) {
	code, err := ShortenMediaID("1470654893538426156_25025320")
	require.NoError(t, err)
	assert.Equal(t, "BRo0NV0jD0s", code)

	code, err = ShortenMediaID("1470654893538426156")
	require.NoError(t, err)
	assert.Equal(t, "BRo0NV0jD0s", code)

	_, err = ShortenMediaID("abc_123")
	assert.Error(t, err)
}

func TestWeblinkFromMediaID(t *testing.T) {
	link, err := WeblinkFromMediaID("1470517649007430315_25025320")
	require.NoError(t, err)
	assert.Equal(t, "https://www.instagram.com/p/BRoVAK5B8qr/", link)
}

func TestExpandCodeErrors(t *testing.T) {
	_, err := ExpandCode("")
	assert.Error(t, err)

	_, err = ExpandCode("BRo7njq*75U")
	assert.Error(t, err)

	_, err = ExpandCode("____________")
	assert.Error(t, err, "twelve max digits exceed 64 bits")
}

func TestRoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, 1206573574980690068, 1<<63 + 5} {
		code := ShortenID(id)
		back, err := ExpandCode(code)
		require.NoError(t, err)
		assert.Equal(t, id, back, code)
	}
}
