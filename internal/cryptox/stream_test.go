package cryptox

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/progresslapse/internal/common"
)

func newTestCipher(t *testing.T) *MediaCipher {
	t.Helper()
	d, err := NewKeyDeriver([]byte("test-master-secret"))
	require.NoError(t, err)
	return NewMediaCipher(d)
}

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	sizes := []int{0, 1, 100, chunkSize - 1, chunkSize, chunkSize + 1, 3*chunkSize + 17}
	for _, size := range sizes {
		plaintext := randBytes(t, size)

		var ct bytes.Buffer
		require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(plaintext), "user-1"), "size=%d", size)

		var pt bytes.Buffer
		require.NoError(t, c.DecryptStream(&pt, &ct, "user-1"), "size=%d", size)

		assert.True(t, bytes.Equal(plaintext, pt.Bytes()), "round trip mismatch at size %d", size)
	}
}

func TestDecrypt_WrongUserFails(t *testing.T) {
	c := newTestCipher(t)

	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader([]byte("private bytes")), "alice"))

	var pt bytes.Buffer
	err := c.DecryptStream(&pt, &ct, "bob")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDecryption))
	assert.Zero(t, pt.Len(), "no plaintext may leak on key mismatch")
}

func TestDecrypt_CorruptedCiphertext(t *testing.T) {
	c := newTestCipher(t)

	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(randBytes(t, 500)), "u"))

	data := ct.Bytes()
	data[len(data)/2] ^= 0xff

	var pt bytes.Buffer
	err := c.DecryptStream(&pt, bytes.NewReader(data), "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
	assert.Zero(t, pt.Len())
}

func TestDecrypt_Truncated(t *testing.T) {
	c := newTestCipher(t)

	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(randBytes(t, 2*chunkSize)), "u"))

	// Cut the stream anywhere after the header.
	data := ct.Bytes()[:ct.Len()-10]

	var pt bytes.Buffer
	err := c.DecryptStream(&pt, bytes.NewReader(data), "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
}

func TestDecrypt_ChunkBoundaryTruncation(t *testing.T) {
	c := newTestCipher(t)

	// Two full chunks; dropping the second (final) one must not pass as
	// a shorter valid stream.
	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(randBytes(t, 2*chunkSize)), "u"))

	aead, err := c.newAEAD("u")
	require.NoError(t, err)
	headerLen := len(streamMagic) + 1 + noncePrefixLen
	firstChunk := headerLen + 4 + chunkSize + aead.Overhead()

	var pt bytes.Buffer
	err = c.DecryptStream(&pt, bytes.NewReader(ct.Bytes()[:firstChunk]), "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
}

func TestDecrypt_TrailingData(t *testing.T) {
	c := newTestCipher(t)

	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader([]byte("x")), "u"))
	ct.WriteString("extra")

	var pt bytes.Buffer
	err := c.DecryptStream(&pt, &ct, "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
}

func TestDecrypt_GarbageHeader(t *testing.T) {
	c := newTestCipher(t)

	var pt bytes.Buffer
	err := c.DecryptStream(&pt, bytes.NewReader([]byte("not ciphertext at all")), "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
}

func TestEncrypt_NonceVariesBetweenCalls(t *testing.T) {
	c := newTestCipher(t)
	plaintext := []byte("same input")

	var a, b bytes.Buffer
	require.NoError(t, c.EncryptStream(&a, bytes.NewReader(plaintext), "u"))
	require.NoError(t, c.EncryptStream(&b, bytes.NewReader(plaintext), "u"))

	assert.NotEqual(t, a.Bytes(), b.Bytes(), "ciphertext must be randomized per call")
}

func TestDecrypt_SwappedChunksRejected(t *testing.T) {
	c := newTestCipher(t)

	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(randBytes(t, 3*chunkSize)), "u"))

	aead, err := c.newAEAD("u")
	require.NoError(t, err)
	headerLen := len(streamMagic) + 1 + noncePrefixLen
	chunkLen := 4 + chunkSize + aead.Overhead()

	data := ct.Bytes()
	swapped := make([]byte, len(data))
	copy(swapped, data)
	copy(swapped[headerLen:], data[headerLen+chunkLen:headerLen+2*chunkLen])
	copy(swapped[headerLen+chunkLen:], data[headerLen:headerLen+chunkLen])

	var pt bytes.Buffer
	err = c.DecryptStream(&pt, bytes.NewReader(swapped), "u")
	assert.True(t, errors.Is(err, common.ErrDecryption))
}

func TestDecryptStream_LargeInputBoundedOutput(t *testing.T) {
	c := newTestCipher(t)

	plaintext := randBytes(t, 5*chunkSize)
	var ct bytes.Buffer
	require.NoError(t, c.EncryptStream(&ct, bytes.NewReader(plaintext), "u"))

	var pt bytes.Buffer
	require.NoError(t, c.DecryptStream(&pt, io.MultiReader(&ct), "u"))
	assert.Equal(t, plaintext, pt.Bytes())
}
