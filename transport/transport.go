package transport

import (
	"context"
	"time"
)

// Reliability selects the delivery guarantee a publication or subscription
// requests from the session.
type Reliability string

const (
	ReliabilityBestEffort Reliability = "best-effort"
	ReliabilityReliable   Reliability = "reliable"
)

// Congestion selects what a publisher does when the session is backed up.
type Congestion string

const (
	CongestionBlock Congestion = "block"
	CongestionDrop  Congestion = "drop"
)

// QoS is the per-message quality-of-service a publication or subscription
// carries, per spec §6.
type QoS struct {
	// Priority is 1-7; lower is higher priority.
	Priority    int
	Reliability Reliability
	Congestion  Congestion
	// Express skips any batching/micro-buffering the session might do.
	Express bool
}

// Config is what a Session is opened from: the resolved transport-config
// file contents (if any), as loaded from the element's config path
// (spec §6). Nothing else is merged into it.
type Config struct {
	// Path is the transport-config file path the element was given, empty
	// if none.
	Path string
	// Raw holds decoded config-file key/value pairs, passed through to the
	// concrete Session implementation uninterpreted by the core.
	Raw map[string]string
}

// Sample is one received message, handed to a subscriber's onSample
// callback or delivered through a Subscriber's FIFO.
type Sample struct {
	Payload []byte
	// Attachment is the envelope codec's encoded attachment string.
	Attachment string
	// KeyExpr is the concrete resource name this sample arrived on.
	KeyExpr string
	// Timestamp is the session's own per-sample timestamp, used as a PTS
	// fallback per §9's resolved open question.
	Timestamp time.Time
}

// Publisher is a declared publication bound to one resource name.
type Publisher interface {
	// Put publishes payload with attachment under the QoS the publisher
	// was declared with. Put may block under CongestionBlock; ctx
	// cancellation makes a blocked Put return promptly. The plugin
	// sink's Render passes context.Background(), so a flush does not
	// cancel a blocked Put.
	Put(ctx context.Context, payload []byte, attachment string) error
	Undeclare() error
}

// Subscriber is a declared subscription bound to one (possibly wildcard)
// resource name; samples arrive through the onSample callback the
// Session was given at declaration time.
type Subscriber interface {
	Undeclare() error
}

// PresenceListener reports transitions in whether any subscription
// currently matches a publisher's resource name.
type PresenceListener interface {
	Undeclare() error
}

// Session is one transport session, shared across elements in the same
// session-group (spec §4.6).
type Session interface {
	DeclarePublisher(keyExpr string, qos QoS) (Publisher, error)
	DeclareSubscriber(keyExpr string, qos QoS, onSample func(Sample)) (Subscriber, error)
	// DeclarePresenceListener reports whether any live subscription
	// matches keyExpr. onChange fires only on transitions, not on every
	// check; the Session also exposes a synchronous initial probe via
	// HasMatchingSubscribers so the caller can seed its presence flag
	// before the first notification.
	DeclarePresenceListener(keyExpr string, onChange func(present bool)) (PresenceListener, error)
	// HasMatchingSubscribers synchronously probes current presence for
	// keyExpr, for the Null->Ready initial probe (spec §4.3).
	HasMatchingSubscribers(keyExpr string) (bool, error)
	Close() error
}

// Opener constructs a Session from a resolved Config. Concrete adapters
// (loopback.Open, natstransport.Open) satisfy this signature so the
// session registry can remain transport-agnostic.
type Opener func(cfg Config) (Session, error)
