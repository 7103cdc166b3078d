package plugin

import (
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/zenohsink"
	"github.com/e7canasta/gst-plugin-zenoh/zenohsrc"
)

// gstFlagBits maps the envelope's symbolic flags onto the GstBufferFlags
// bit positions they mirror. Only the subset spec §4.2 names round-trips;
// every other GstBufferFlags bit is dropped on the way out and never set
// on the way in.
var gstFlagBits = []struct {
	envelope envelope.Flag
	gst      gst.BufferFlags
}{
	{envelope.FlagLive, gst.BufferFlagLive},
	{envelope.FlagDiscont, gst.BufferFlagDiscont},
	{envelope.FlagDelta, gst.BufferFlagDeltaUnit},
	{envelope.FlagHeader, gst.BufferFlagHeader},
	{envelope.FlagGap, gst.BufferFlagGap},
	{envelope.FlagDroppable, gst.BufferFlagDroppable},
	{envelope.FlagMarker, gst.BufferFlagMarker},
}

func flagsFromGst(b *gst.Buffer) envelope.Flags {
	var f envelope.Flags
	got := b.GetFlags()
	for _, m := range gstFlagBits {
		if got&m.gst != 0 {
			f = f.Set(m.envelope)
		}
	}
	return f
}

func applyFlagsToGst(b *gst.Buffer, f envelope.Flags) {
	for _, m := range gstFlagBits {
		if f.Has(m.envelope) {
			b.SetFlags(b.GetFlags() | m.gst)
		}
	}
}

// clockTimeToInt64 converts a GstClockTime into the envelope's nullable
// *int64 timing fields. gst.ClockTimeNone marks "not set", which the
// envelope represents as a nil pointer rather than a sentinel value.
func clockTimeToInt64(t gst.ClockTime) *int64 {
	if t == gst.ClockTimeNone {
		return nil
	}
	v := int64(t)
	return &v
}

func int64ToClockTime(v *int64) gst.ClockTime {
	if v == nil {
		return gst.ClockTimeNone
	}
	return gst.ClockTime(*v)
}

func uint64PtrOrNil(v uint64, none uint64) *uint64 {
	if v == none {
		return nil
	}
	out := v
	return &out
}

// renderInputFromBuffer maps a buffer the sink element received off its
// sink pad onto zenohsink.RenderInput, reading the payload with a
// read-only map exactly as stream-capture's OnNewSample callback does,
// and releasing the map before returning.
func renderInputFromBuffer(buf *gst.Buffer, caps string) (zenohsink.RenderInput, func()) {
	mapInfo := buf.Map(gst.MapRead)
	payload := mapInfo.Bytes()

	in := zenohsink.RenderInput{
		Payload: payload,
		Caps:    caps,
		Meta: zenohsink.BufferMeta{
			PTS:       clockTimeToInt64(buf.PresentationTimestamp()),
			DTS:       clockTimeToInt64(buf.DecodingTimestamp()),
			Duration:  clockTimeToInt64(buf.Duration()),
			Offset:    uint64PtrOrNil(buf.GetOffset(), gst.BufferOffsetNone),
			OffsetEnd: uint64PtrOrNil(buf.GetOffsetEnd(), gst.BufferOffsetNone),
			Flags:     flagsFromGst(buf),
		},
	}
	return in, buf.Unmap
}

// gstBufferFromDecoded allocates a new gst.Buffer carrying the decoded
// receive-side payload and timing metadata, the reconstruction half of
// spec §4.4 step 5 ("push the buffer with its reconstructed metadata").
func gstBufferFromDecoded(b *zenohsrc.Buffer) *gst.Buffer {
	out := gst.NewBufferFromBytes(b.Payload)
	out.SetPresentationTimestamp(int64ToClockTime(b.PTS))
	out.SetDecodingTimestamp(int64ToClockTime(b.DTS))
	out.SetDuration(int64ToClockTime(b.Duration))
	if b.Offset != nil {
		out.SetOffset(*b.Offset)
	}
	if b.OffsetEnd != nil {
		out.SetOffsetEnd(*b.OffsetEnd)
	}
	applyFlagsToGst(out, b.Flags)
	return out
}

func capsFromString(s string) *gst.Caps {
	if s == "" {
		return nil
	}
	return gst.NewCapsFromString(s)
}
