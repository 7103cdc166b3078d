package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
)

// zstdCodec wraps a single shared *zstd.Encoder/*zstd.Decoder pair.
// Both types are documented safe for concurrent use, so one pair serves
// every zenohsink/zenohsrc element in the process rather than allocating
// per call.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() Codec {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return unavailableCodec{tag: envelope.CompressionZstd, err: err}
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return unavailableCodec{tag: envelope.CompressionZstd, err: err}
	}
	return &zstdCodec{enc: enc, dec: dec}
}

func (c *zstdCodec) Tag() Tag { return envelope.CompressionZstd }

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

// unavailableCodec is registered in place of a codec whose construction
// failed (should not happen for zstd/lz4/gzip with nil options, but keeps
// Get's contract — recognized tag, operation fails — instead of a panic).
type unavailableCodec struct {
	tag Tag
	err error
}

func (c unavailableCodec) Tag() Tag { return c.tag }
func (c unavailableCodec) Compress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("%s codec unavailable: %w", c.tag, c.err)
}
func (c unavailableCodec) Decompress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("%s codec unavailable: %w", c.tag, c.err)
}
