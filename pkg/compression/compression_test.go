package compression

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_SmallPayloadUntouched(t *testing.T) {
	in := []byte("short")
	out, compressed, err := Compress(in)
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, in, out)
}

func TestCompress_RoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte("clipboard history "), 500)
	out, compressed, err := Compress(in)
	require.NoError(t, err)
	require.True(t, compressed)
	assert.Less(t, len(out), len(in))

	back, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestCompress_IncompressibleKeptRaw(t *testing.T) {
	in := make([]byte, 4096)
	_, err := rand.Read(in)
	require.NoError(t, err)

	out, compressed, err := Compress(in)
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, in, out)
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := Decompress([]byte("not gzip"))
	assert.Error(t, err)
}
