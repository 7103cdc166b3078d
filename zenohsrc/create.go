package zenohsrc

import (
	"github.com/e7canasta/gst-plugin-zenoh/compression"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// Buffer is the reconstructed framework buffer, reduced to what the
// subscriber's create contract produces (spec §4.4 step 4).
type Buffer struct {
	Payload            []byte
	PTS, DTS, Duration *int64
	Offset, OffsetEnd  *uint64
	Flags              envelope.Flags
}

// CapsState is the subscriber's "last seen caps" clock, used to decide
// whether a caps update must be pushed downstream before the next
// buffer (spec §4.4 step 2).
type CapsState struct {
	LastCaps *string
}

// Reset clears the caps clock so the next decoded sample unconditionally
// pushes caps if it carries any (fresh caps-tracking cycle on restart).
func (c *CapsState) Reset() { c.LastCaps = nil }

// DecodeOutcome reports what processing one popped sample produced.
// Buffer is non-nil whenever the framework should receive a buffer, which
// includes the FeatureMissing case (spec §4.4 step 3: "pass the raw bytes
// through with an error counter increment"); Err is non-nil whenever
// errors should be incremented, and is additionally the value the caller
// must surface to the framework when Buffer is nil (the StreamCorrupt
// case, which has no recoverable bytes to pass through).
type DecodeOutcome struct {
	CapsUpdate *string
	Buffer     *Buffer
	Bytes      int
	Err        error
}

// DecodeSample is the receive-side envelope decode contract (spec §4.4
// steps 2-4) as a pure function: it touches nothing but its arguments
// and capsState, so it is testable without a live FIFO. It is the
// subscriber's entry point (Element.Create).
func DecodeSample(applyBufferMeta bool, capsState *CapsState, sample transport.Sample) DecodeOutcome {
	return DecodeEnvelope(envelope.Decode(sample.Attachment), applyBufferMeta, capsState, sample)
}

// DecodeEnvelope is DecodeSample's body, taking an already-decoded
// envelope. The demultiplexer calls this directly: it must decode the
// envelope itself first, to resolve the routing key (spec §4.5 step 1),
// so it reuses that decode here instead of paying for a second pass
// over the attachment string.
func DecodeEnvelope(env envelope.Envelope, applyBufferMeta bool, capsState *CapsState, sample transport.Sample) DecodeOutcome {
	var out DecodeOutcome

	if env.Caps != nil && (capsState.LastCaps == nil || *capsState.LastCaps != *env.Caps) {
		caps := *env.Caps
		out.CapsUpdate = &caps
		capsState.LastCaps = &caps
	}

	payload := sample.Payload
	if env.Compression != "" && env.Compression != envelope.CompressionNone {
		codec, ok := compression.Get(env.Compression)
		if !ok {
			out.Err = errs.New(errs.FeatureMissing, "zenohsrc.DecodeSample",
				"compression tag "+string(env.Compression)+" not compiled into this build")
			out.Buffer = &Buffer{Payload: payload}
			out.Bytes = len(payload)
			return out
		}
		decompressed, err := codec.Decompress(payload)
		if err != nil {
			out.Err = errs.Wrap(errs.StreamCorrupt, "zenohsrc.DecodeSample", err)
			return out
		}
		payload = decompressed
	}

	buf := &Buffer{Payload: payload}
	if applyBufferMeta {
		buf.DTS = env.DTS
		buf.Duration = env.Duration
		buf.Offset = env.Offset
		buf.OffsetEnd = env.OffsetEnd
		buf.Flags = env.Flags
		if env.PTS != nil {
			buf.PTS = env.PTS
		} else {
			pts := sample.Timestamp.UnixNano()
			buf.PTS = &pts
		}
	}

	out.Buffer = buf
	out.Bytes = len(payload)
	return out
}
