package compression

import (
	"errors"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
)

// Tag identifies a compression algorithm by the same symbol the envelope
// carries on the wire.
type Tag = envelope.Compression

// ErrNotCompiledIn names the condition Get reports with a false bool: a
// Tag this build does not link a codec for. Get itself returns no error
// value. Callers on the receive path map that case to
// errs.FeatureMissing; a Decompress failure for a Tag Get does recognize
// maps to errs.StreamCorrupt instead.
var ErrNotCompiledIn = errors.New("compression: algorithm not compiled in")

// Codec compresses and decompresses payloads for one algorithm.
type Codec interface {
	Tag() Tag
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

var registry = map[Tag]Codec{
	envelope.CompressionNone: noneCodec{},
	envelope.CompressionZstd: newZstdCodec(),
	envelope.CompressionLZ4:  newLZ4Codec(),
	envelope.CompressionGzip: newGzipCodec(),
}

// Get looks up the codec for tag. The bool is false when the tag is not
// recognized by this build at all (unknown tag or an algorithm compiled
// out) — the caller should treat that as errs.FeatureMissing rather than
// attempting the operation.
func Get(tag Tag) (Codec, bool) {
	c, ok := registry[tag]
	return c, ok
}

type noneCodec struct{}

func (noneCodec) Tag() Tag                             { return envelope.CompressionNone }
func (noneCodec) Compress(data []byte) ([]byte, error) { return data, nil }
func (noneCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
