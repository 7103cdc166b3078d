// Package envelope implements the on-wire attachment carried alongside a
// published payload: a flat, textual key/value record that preserves
// GStreamer buffer semantics (timing, caps, flags) across a transport that
// only knows about bytes.
//
// The wire format is intentionally simple (one "key=value" per line) so
// that schema evolution never breaks older receivers: unknown keys are
// preserved on decode under UserMeta, and a missing gst.version decodes to
// a legacy, fields-free envelope rather than an error.
package envelope
