package plugin

import (
	"github.com/tinyzimmer/go-glib/glib"
)

// Property IDs shared across the three elements' GObject property
// vectors (spec §6's "Element configuration surface (all elements)").
// Per-element extra properties start numbering after common.
const (
	propKeyExpr uint = iota + 1
	propConfigPath
	propPriority
	propReliability
	propCongestionControl
	propSessionGroup
	propExpress
	propFirstElementSpecific
)

// commonParamSpecs returns the GObject property specs every element
// installs, in property-ID order starting at propKeyExpr. Grounded on
// stream-capture's RTSPConfig surface (resource locator, numeric
// tuning knobs, boolean feature flags) generalized to GObject
// ParamSpec construction, since no example in the pack authors a
// GStreamer plugin's property vector.
func commonParamSpecs() []*glib.ParamSpec {
	return []*glib.ParamSpec{
		glib.NewStringParam("key-expr", "Key Expression", "Pub/sub resource name, may contain * and ** wildcards on the subscriber side", "", glib.ParameterReadWrite),
		glib.NewStringParam("config-path", "Config Path", "Optional transport-config file path", "", glib.ParameterReadWrite),
		glib.NewIntParam("priority", "Priority", "Message priority, 1 (highest) to 7 (lowest)", 1, 7, 4, glib.ParameterReadWrite),
		glib.NewStringParam("reliability", "Reliability", "best-effort or reliable", "reliable", glib.ParameterReadWrite),
		glib.NewStringParam("congestion-control", "Congestion Control", "block or drop", "block", glib.ParameterReadWrite),
		glib.NewStringParam("session-group", "Session Group", "Session-sharing tag; empty means an exclusive session", "", glib.ParameterReadWrite),
		glib.NewBoolParam("express", "Express", "Skip transport-side micro-batching for this publication", false, glib.ParameterReadWrite),
	}
}

// statsParamSpecs returns read-only statistics property specs shared by
// every element (spec §6 "Statistics (read-only)").
func statsParamSpecs() []*glib.ParamSpec {
	return []*glib.ParamSpec{
		glib.NewUInt64Param("bytes-sent", "Bytes Sent", "Bytes published on the wire", 0, ^uint64(0), 0, glib.ParameterReadable),
		glib.NewUInt64Param("bytes-received", "Bytes Received", "Bytes received off the wire", 0, ^uint64(0), 0, glib.ParameterReadable),
		glib.NewUInt64Param("messages-sent", "Messages Sent", "Buffers published", 0, ^uint64(0), 0, glib.ParameterReadable),
		glib.NewUInt64Param("messages-received", "Messages Received", "Buffers received", 0, ^uint64(0), 0, glib.ParameterReadable),
		glib.NewUInt64Param("errors", "Errors", "Failed publish/receive/decode operations", 0, ^uint64(0), 0, glib.ParameterReadable),
		glib.NewUInt64Param("dropped", "Dropped", "Samples dropped by a full bounded FIFO", 0, ^uint64(0), 0, glib.ParameterReadable),
	}
}
