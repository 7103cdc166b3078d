// Package transport defines the boundary this plugin core depends on but
// does not implement: a pub/sub data-plane session keyed by resource names
// ("key expressions"), with per-message QoS and subscriber-presence
// notification.
//
// The session itself — routing, congestion, wire protocol — is an external
// collaborator (spec §1); this package only states the contract the core
// elements (zenohsink, zenohsrc, zenohdemux) call through, plus the
// wildcard-matching helpers that are pure enough to live here regardless
// of which concrete Session backs them. Two concrete adapters live in
// subpackages: transport/loopback (in-process, for tests and local
// examples) and transport/natstransport (github.com/nats-io/nats.go
// backed, for real deployments).
package transport
