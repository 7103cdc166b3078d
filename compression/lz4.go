package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
)

// lz4Codec uses the frame format (not the raw block API) because the
// envelope carries no separate uncompressed-size field: a frame is
// self-describing, so Decompress needs nothing beyond the compressed
// bytes themselves.
type lz4Codec struct{}

func newLZ4Codec() Codec { return lz4Codec{} }

func (lz4Codec) Tag() Tag { return envelope.CompressionLZ4 }

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}
