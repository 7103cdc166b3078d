// Package zenohsink implements the publisher element's core logic (spec
// §4.3): turning one framework buffer into one transport publication,
// plus subscriber-presence tracking. The render path is a pure function
// over a transport.Publisher and a config.PublisherConfig, testable
// without a live pipeline; Element wires it to the session registry and
// the lifecycle state machine. The host-framework adapter (real
// go-gst/gst/base hooks) lives in the plugin package.
package zenohsink
