package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox_RoundTrip(t *testing.T) {
	box, err := NewBox("unit-test-master-key")
	require.NoError(t, err)

	sealed, err := box.Seal([]byte(`{"api_key":"s3cr3t"}`))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "s3cr3t")

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"api_key":"s3cr3t"}`, string(opened))
}

func TestBox_NonceIsRandom(t *testing.T) {
	box, err := NewBox("k")
	require.NoError(t, err)

	a, _ := box.Seal([]byte("same"))
	b, _ := box.Seal([]byte("same"))
	assert.NotEqual(t, a, b)
}

func TestBox_WrongKeyFails(t *testing.T) {
	a, _ := NewBox("key-a")
	b, _ := NewBox("key-b")

	sealed, err := a.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
}

func TestBox_Malformed(t *testing.T) {
	box, _ := NewBox("k")

	_, err := box.Open("not base64!")
	assert.Error(t, err)

	_, err = box.Open("AAAA")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = NewBox("")
	assert.Error(t, err)
}
