package clipboard

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipman/internal/types"
)

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestClassify_Priority(t *testing.T) {
	uris := []byte("file:///home/u/a.txt\r\nfile:///home/u/b%20c.txt\n")
	img := pngData(t)

	tests := []struct {
		name string
		reps []Representation
		want types.Kind
	}{
		{"files over image and text", []Representation{{MIMEText, []byte("a.txt")}, {MIMEPNG, img}, {MIMEURIList, uris}}, types.KindFiles},
		{"image over text", []Representation{{MIMEText, []byte("caption")}, {MIMEPNG, img}}, types.KindImage},
		{"text only", []Representation{{MIMEText, []byte("hello")}}, types.KindText},
		{"broken image falls back to text", []Representation{{MIMEPNG, []byte("junk")}, {MIMEText, []byte("hello")}}, types.KindText},
		{"uri list without files falls back to text", []Representation{{MIMEURIList, []byte("https://example.com\n")}, {MIMEText, []byte("https://example.com")}}, types.KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(&RawPayload{Representations: tt.reps})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Kind())
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	_, err := Classify(nil)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)

	_, err = Classify(&RawPayload{Representations: []Representation{{MIMEPNG, []byte("junk")}}})
	assert.ErrorIs(t, err, ErrUnsupportedPayload)

	_, err = Classify(&RawPayload{Representations: []Representation{{MIMEText, []byte{0xff, 0xfe}}}})
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestParseURIList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"file:///tmp/a\nfile:///tmp/b%20c\n", []string{"/tmp/a", "/tmp/b c"}},
		{"# comment\r\nfile://localhost/etc/hosts\r\n", []string{"/etc/hosts"}},
		{"copy\nfile:///home/u/x.png", []string{"/home/u/x.png"}},
		{"https://example.com/a\nfile://remote/share", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseURIList([]byte(tt.in)), tt.in)
	}
}

func TestRawPayload_AddSkipsEmpty(t *testing.T) {
	p := &RawPayload{}
	p.Add(MIMEText, nil)
	assert.True(t, p.Empty())
	p.Add(MIMEText, []byte("x"))
	assert.False(t, p.Empty())
}

func TestContentProcessor(t *testing.T) {
	p := NewContentProcessor()
	assert.True(t, p.Accept(types.NewText("  ")))
	assert.False(t, p.Accept(types.ClipboardContent{}))

	p.IgnoreWhitespace = true
	assert.False(t, p.Accept(types.NewText(" \n ")))
	assert.True(t, p.Accept(types.NewFiles([]string{" "})))

	p.AddFilter(KindFilter(types.KindText))
	assert.False(t, p.Accept(types.NewFiles([]string{"/a"})))

	exclude, err := ExcludePatternFilter(`^\d{6}$`)
	require.NoError(t, err)
	p.AddFilter(exclude)
	assert.False(t, p.Accept(types.NewText("123456")))
	assert.True(t, p.Accept(types.NewText("1234567")))

	p.SetMaxSize(3)
	assert.False(t, p.Accept(types.NewText("abcd")))
	p.SetMaxSize(0)
	assert.True(t, p.Accept(types.NewText("abcd")))

	_, err = ExcludePatternFilter("(")
	assert.Error(t, err)
}
