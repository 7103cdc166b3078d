// Package natstransport is a transport.Session backed by
// github.com/nats-io/nats.go: resource names become NATS subjects, the
// envelope attachment rides in a message header, and presence (which
// NATS core has no native concept of) is approximated with a heartbeat
// beacon each subscriber publishes and each presence listener tracks
// with a TTL.
package natstransport
