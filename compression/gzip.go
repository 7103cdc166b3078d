package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
)

// gzipCodec speaks the gzip container via the standard library. No repo in
// the retrieval pack brings a non-stdlib gzip implementation, and the
// format itself is a well-known, self-describing container, so reaching
// for a third-party wrapper here would buy nothing.
type gzipCodec struct{}

func newGzipCodec() Codec { return gzipCodec{} }

func (gzipCodec) Tag() Tag { return envelope.CompressionGzip }

func (gzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
