package zenohsrc

import (
	"testing"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/compression"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

func i64(n int64) *int64 { return &n }

func TestDecodeSampleLegacyPayloadOnly(t *testing.T) {
	var caps CapsState

	out := DecodeSample(true, &caps, transport.Sample{Payload: []byte("hi")})
	if out.Err != nil {
		t.Fatalf("Err = %v, want nil", out.Err)
	}
	if string(out.Buffer.Payload) != "hi" {
		t.Errorf("payload = %q, want %q", out.Buffer.Payload, "hi")
	}
}

func TestDecodeSampleAppliesBufferMetaWhenEnabled(t *testing.T) {
	var caps CapsState

	env := envelope.New()
	env.PTS = i64(123)
	sample := transport.Sample{Payload: []byte("x"), Attachment: env.Encode()}

	out := DecodeSample(true, &caps, sample)
	if out.Buffer.PTS == nil || *out.Buffer.PTS != 123 {
		t.Errorf("PTS = %v, want 123", out.Buffer.PTS)
	}
}

func TestDecodeSampleFallsBackToTransportTimestampForPTS(t *testing.T) {
	var caps CapsState

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	env := envelope.New() // no PTS
	sample := transport.Sample{Payload: []byte("x"), Attachment: env.Encode(), Timestamp: ts}

	out := DecodeSample(true, &caps, sample)
	if out.Buffer.PTS == nil || *out.Buffer.PTS != ts.UnixNano() {
		t.Errorf("PTS = %v, want transport timestamp %d", out.Buffer.PTS, ts.UnixNano())
	}
}

func TestDecodeSampleAppliesNoTimingWhenBufferMetaDisabled(t *testing.T) {
	var caps CapsState

	env := envelope.New()
	env.PTS = i64(999)
	sample := transport.Sample{Payload: []byte("x"), Attachment: env.Encode(), Timestamp: time.Now()}

	out := DecodeSample(false, &caps, sample)
	if out.Buffer.PTS != nil {
		t.Errorf("PTS = %v, want nil (buffer-meta application disabled)", out.Buffer.PTS)
	}
}

func TestDecodeSampleEmitsCapsUpdateOnChange(t *testing.T) {
	var caps CapsState

	env1 := envelope.New()
	c1 := "video/x-raw"
	env1.Caps = &c1
	out1 := DecodeSample(true, &caps, transport.Sample{Attachment: env1.Encode()})
	if out1.CapsUpdate == nil || *out1.CapsUpdate != c1 {
		t.Fatalf("first CapsUpdate = %v, want %q", out1.CapsUpdate, c1)
	}

	out2 := DecodeSample(true, &caps, transport.Sample{Attachment: env1.Encode()})
	if out2.CapsUpdate != nil {
		t.Errorf("second CapsUpdate = %v, want nil (unchanged)", out2.CapsUpdate)
	}

	env3 := envelope.New()
	c3 := "video/x-raw,width=16"
	env3.Caps = &c3
	out3 := DecodeSample(true, &caps, transport.Sample{Attachment: env3.Encode()})
	if out3.CapsUpdate == nil || *out3.CapsUpdate != c3 {
		t.Errorf("third CapsUpdate = %v, want %q (changed)", out3.CapsUpdate, c3)
	}
}

func TestDecodeSampleDecompresses(t *testing.T) {
	var caps CapsState

	codec, _ := compression.Get(envelope.CompressionZstd)
	compressed, err := codec.Compress([]byte("hello world"))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	env := envelope.New()
	env.Compression = envelope.CompressionZstd
	sample := transport.Sample{Payload: compressed, Attachment: env.Encode()}

	out := DecodeSample(true, &caps, sample)
	if out.Err != nil {
		t.Fatalf("Err = %v", out.Err)
	}
	if string(out.Buffer.Payload) != "hello world" {
		t.Errorf("payload = %q, want %q", out.Buffer.Payload, "hello world")
	}
}

func TestDecodeSampleUnknownCompressionTagIsFeatureMissingWithRawPassthrough(t *testing.T) {
	var caps CapsState

	env := envelope.New()
	env.Compression = envelope.Compression("brotli")
	sample := transport.Sample{Payload: []byte("raw-bytes"), Attachment: env.Encode()}

	out := DecodeSample(true, &caps, sample)
	if !errs.Is(out.Err, errs.FeatureMissing) {
		t.Fatalf("err kind = %v, want FeatureMissing", out.Err)
	}
	if out.Buffer == nil || string(out.Buffer.Payload) != "raw-bytes" {
		t.Errorf("buffer = %+v, want raw bytes passed through", out.Buffer)
	}
}

func TestDecodeSampleCorruptRecognizedCompressionIsStreamCorrupt(t *testing.T) {
	var caps CapsState

	env := envelope.New()
	env.Compression = envelope.CompressionZstd
	sample := transport.Sample{Payload: []byte("not actually zstd"), Attachment: env.Encode()}

	out := DecodeSample(true, &caps, sample)
	if !errs.Is(out.Err, errs.StreamCorrupt) {
		t.Fatalf("err kind = %v, want StreamCorrupt", out.Err)
	}
	if out.Buffer != nil {
		t.Errorf("buffer = %+v, want nil (no recoverable bytes)", out.Buffer)
	}
}
