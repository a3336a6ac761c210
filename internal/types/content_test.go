package types

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHashOf_Deterministic(t *testing.T) {
	a := NewText("hello")
	b := NewText("hello")
	assert.Equal(t, HashOf(a), HashOf(b))
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, HashOf(a), HashOf(NewText("hello ")))
}

func TestHashOf_VariantsNeverCollide(t *testing.T) {
	text := NewText("/tmp/a")
	files := NewFiles([]string{"/tmp/a"})
	require.Equal(t, text.Data(), files.Data())
	assert.NotEqual(t, text.Hash(), files.Hash())
	assert.False(t, text.Equal(files))
}

func TestHashOf_FileOrderMatters(t *testing.T) {
	a := NewFiles([]string{"/a", "/b"})
	b := NewFiles([]string{"/b", "/a"})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestHash_StringRoundTrip(t *testing.T) {
	h := NewText("round trip").Hash()
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Len(t, h.Short(), 12)
	assert.True(t, h.CID().Defined())
}

func TestNewImage_DecodesMetadata(t *testing.T) {
	data := pngBytes(t, 4, 3)
	c, err := NewImage(data)
	require.NoError(t, err)

	img, ok := c.Image()
	require.True(t, ok)
	assert.Equal(t, KindImage, c.Kind())
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, int64(len(data)), c.Size())

	// Constructors copy their input.
	data[len(data)-1] ^= 0xFF
	again, err := NewImage(pngBytes(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, again.Hash(), c.Hash())
}

func TestNewImage_RejectsGarbage(t *testing.T) {
	_, err := NewImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUndecodableImage)
}

func TestNewFiles_CopiesInput(t *testing.T) {
	paths := []string{"/home/u/a.txt", "/home/u/b.txt"}
	c := NewFiles(paths)
	paths[0] = "/etc/passwd"

	assert.Equal(t, []string{"/home/u/a.txt", "/home/u/b.txt"}, c.Files())
	got := c.Files()
	got[1] = "changed"
	assert.Equal(t, "/home/u/b.txt", c.Files()[1])
}

func TestFromData_InverseOfData(t *testing.T) {
	tests := []ClipboardContent{
		NewText("héllo\nworld"),
		NewFiles([]string{"/a b/c", "/d"}),
		NewFiles(nil),
	}
	img, err := NewImage(pngBytes(t, 2, 2))
	require.NoError(t, err)
	tests = append(tests, img)

	for _, c := range tests {
		t.Run(c.String(), func(t *testing.T) {
			back, err := FromData(c.Kind(), c.Data())
			require.NoError(t, err)
			assert.Equal(t, c.Hash(), back.Hash())
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"text", KindText, false},
		{" Image ", KindImage, false},
		{"files", KindFiles, false},
		{"file", KindFiles, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownKind)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSize(t *testing.T) {
	assert.Equal(t, int64(5), NewText("hello").Size())
	assert.Equal(t, int64(7), NewFiles([]string{"/a", "/bc"}).Size())
	assert.Equal(t, int64(0), ClipboardContent{}.Size())
	assert.True(t, ClipboardContent{}.IsZero())
}
