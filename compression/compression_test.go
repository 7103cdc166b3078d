package compression

import (
	"bytes"
	"testing"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
)

func roundTrip(t *testing.T, tag Tag) {
	t.Helper()
	c, ok := Get(tag)
	if !ok {
		t.Fatalf("Get(%q): not recognized", tag)
	}
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 64)

	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(out), len(payload))
	}
}

func TestNoneRoundTrip(t *testing.T)  { roundTrip(t, envelope.CompressionNone) }
func TestZstdRoundTrip(t *testing.T)  { roundTrip(t, envelope.CompressionZstd) }
func TestLZ4RoundTrip(t *testing.T)   { roundTrip(t, envelope.CompressionLZ4) }
func TestGzipRoundTrip(t *testing.T)  { roundTrip(t, envelope.CompressionGzip) }

func TestGetUnknownTagNotRecognized(t *testing.T) {
	if _, ok := Get(envelope.Compression("brotli")); ok {
		t.Errorf("Get(brotli): ok = true, want false (not compiled in)")
	}
}

func TestDecompressCorruptDataFails(t *testing.T) {
	for _, tag := range []Tag{envelope.CompressionZstd, envelope.CompressionLZ4, envelope.CompressionGzip} {
		c, ok := Get(tag)
		if !ok {
			t.Fatalf("Get(%q): not recognized", tag)
		}
		if _, err := c.Decompress([]byte("not a valid compressed frame")); err == nil {
			t.Errorf("%s Decompress(garbage): err = nil, want error", tag)
		}
	}
}

func TestNoneIsPassthrough(t *testing.T) {
	c, _ := Get(envelope.CompressionNone)
	payload := []byte("unchanged")
	got, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("none Compress altered payload: %q", got)
	}
}

func TestZstdProducesSmallerOutputForRepetitiveInput(t *testing.T) {
	c, _ := Get(envelope.CompressionZstd)
	payload := bytes.Repeat([]byte("a"), 4096)
	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Errorf("compressed size %d not smaller than input %d", len(compressed), len(payload))
	}
}
