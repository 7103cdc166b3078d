package zenohsink

import (
	"context"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/compression"
	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// BufferMeta carries the subset of a framework buffer's timing/flags
// fields the envelope can represent (spec §4.2).
type BufferMeta struct {
	PTS, DTS, Duration *int64
	Offset, OffsetEnd  *uint64
	Flags              envelope.Flags
}

// RenderInput is one inbound framework buffer, reduced to what the
// render contract needs: the payload bytes (mapped read-only by the
// caller, never copied here), the buffer's negotiated caps string (the
// empty string if the framework has not negotiated any yet), and its
// timing metadata.
type RenderInput struct {
	Payload []byte
	Caps    string
	Meta    BufferMeta
}

// CapsState is the per-element "last sent caps" clock spec §3 calls out
// as part of running resources, allocated at ready->paused and reset
// there (a fresh caps-retransmission cycle each time the element starts
// flowing data again).
type CapsState struct {
	LastCaps   *string
	LastSentAt time.Time
}

// Reset clears the caps clock, so the next render unconditionally sends
// caps again (the "first buffer of the current caps" case).
func (c *CapsState) Reset() {
	c.LastCaps = nil
	c.LastSentAt = time.Time{}
}

func shouldSendCaps(now time.Time, cfg config.PublisherConfig, st *CapsState, currentCaps string) bool {
	if !cfg.SendCaps {
		return false
	}
	if st.LastCaps == nil {
		return true
	}
	if *st.LastCaps != currentCaps {
		return true
	}
	if cfg.CapsIntervalSeconds <= 0 {
		return false
	}
	return now.Sub(st.LastSentAt) >= time.Duration(cfg.CapsIntervalSeconds)*time.Second
}

// renderOutcome reports what one render call did, for the caller to
// fold into stats.Counters. publishErr is set whenever the transport
// put failed, regardless of congestion policy (errors is always
// incremented on a transport failure per spec §4.3 step 4); surfaceErr
// is additionally set only when the congestion policy is "block", since
// "drop" reports success to the framework despite the failure.
type renderOutcome struct {
	published              bool
	bytesBeforeCompression int
	bytesAfterCompression  int
	publishErr             error
	surfaceErr             error
}

// render is the publisher's render contract (spec §4.3 steps 1-5) as a
// pure function: it touches nothing but its arguments, so it is
// testable with a fake transport.Publisher and no live pipeline.
func render(ctx context.Context, pub transport.Publisher, cfg config.PublisherConfig, capsState *CapsState, now time.Time, in RenderInput) renderOutcome {
	env := envelope.New()

	if shouldSendCaps(now, cfg, capsState, in.Caps) {
		caps := in.Caps
		env.Caps = &caps
		capsState.LastCaps = &caps
		capsState.LastSentAt = now
	}

	if cfg.SendBufferMeta {
		env.PTS = in.Meta.PTS
		env.DTS = in.Meta.DTS
		env.Duration = in.Meta.Duration
		env.Offset = in.Meta.Offset
		env.OffsetEnd = in.Meta.OffsetEnd
		env.Flags = in.Meta.Flags
	}

	payload := in.Payload
	before := len(payload)
	after := before

	if cfg.Compression != "" && cfg.Compression != envelope.CompressionNone {
		if codec, ok := compression.Get(cfg.Compression); ok {
			if compressed, err := codec.Compress(payload); err == nil {
				payload = compressed
				after = len(compressed)
				env.Compression = cfg.Compression
			}
			// Compression failure is fail-open (spec §4.3 step 3):
			// publish uncompressed, omit the tag, keep going.
		}
		// An unrecognized/not-compiled-in tag is also fail-open here:
		// the sender simply cannot select an algorithm it doesn't have,
		// so it publishes uncompressed rather than failing the buffer.
	}

	attachment := env.Encode()
	if err := pub.Put(ctx, payload, attachment); err != nil {
		wrapped := errs.Wrap(errs.Publish, "zenohsink.render", err)
		out := renderOutcome{
			bytesBeforeCompression: before,
			bytesAfterCompression:  after,
			publishErr:             wrapped,
		}
		if cfg.QoS.Congestion != transport.CongestionDrop {
			out.surfaceErr = wrapped
		}
		return out
	}

	return renderOutcome{published: true, bytesBeforeCompression: before, bytesAfterCompression: after}
}
