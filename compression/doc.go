// Package compression implements the optional, algorithm-tagged byte
// transform spec §4.2/§4.3/§4.4 describes: applied to the payload after
// envelope construction on the sender, reversed on the receiver.
//
// Each algorithm is addressed by its envelope.Compression tag through the
// package-level registry (Get), so a receiver build that omits an
// algorithm (e.g. built without zstd) reports it as not compiled in rather
// than panicking on an unknown tag.
package compression
