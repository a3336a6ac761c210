// Package compression gzips large payloads before they are persisted.
package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Threshold is the payload size at which Compress starts compressing.
const Threshold = 1024 // 1KB

// Compress gzips data when it is at least Threshold bytes and the result is
// smaller. It reports whether the returned bytes are compressed.
func Compress(data []byte) ([]byte, bool, error) {
	if len(data) < Threshold {
		return data, false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, false, err
	}
	if err := zw.Close(); err != nil {
		return nil, false, err
	}
	if buf.Len() >= len(data) {
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
