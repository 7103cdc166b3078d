// Package zenohsrc implements the subscriber/source element's core logic
// (spec §4.4): draining a bounded FIFO the transport feeds, reversing the
// envelope, and reconstructing one framework buffer per sample. The
// per-sample decode is a pure function over an already-popped
// transport.Sample, testable without a live FIFO or pipeline; Element
// wires it to the bounded FIFO, the session registry, and the lifecycle
// state machine. The host-framework adapter lives in the plugin package.
package zenohsrc
