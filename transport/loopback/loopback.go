// Package loopback is an in-process transport.Session: publications are
// matched against subscriptions by key-expression pattern and delivered
// synchronously to every matching onSample callback. It is adapted from
// framebus's channel-subscriber-map bus (same non-blocking fan-out shape,
// mutex guarding only the subscriber map rather than the full publish
// path) and exists for tests, local examples, and deployments that don't
// need a real cross-process transport.
package loopback

import (
	"context"
	"sync"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

type session struct {
	mu          sync.RWMutex
	closed      bool
	subscribers map[string]*subscription
	listeners   map[string]*presenceListener
	nextID      uint64
}

type subscription struct {
	keyExpr  string
	onSample func(transport.Sample)
}

type presenceListener struct {
	keyExpr  string
	onChange func(bool)
	lastSeen bool
}

// Open constructs a loopback Session. It satisfies transport.Opener, so
// the session registry can use it interchangeably with any other
// concrete transport.
func Open(cfg transport.Config) (transport.Session, error) {
	return &session{
		subscribers: make(map[string]*subscription),
		listeners:   make(map[string]*presenceListener),
	}, nil
}

func (s *session) DeclarePublisher(keyExpr string, qos transport.QoS) (transport.Publisher, error) {
	if err := transport.ValidateKeyExpr(keyExpr); err != nil {
		return nil, err
	}
	return &publisher{session: s, keyExpr: keyExpr}, nil
}

func (s *session) DeclareSubscriber(keyExpr string, qos transport.QoS, onSample func(transport.Sample)) (transport.Subscriber, error) {
	if err := transport.ValidateKeyExpr(keyExpr); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	s.nextID++
	id := idFor(s.nextID)
	s.subscribers[id] = &subscription{keyExpr: keyExpr, onSample: onSample}
	s.mu.Unlock()

	s.notifyPresenceLocked()
	return &subscriber{session: s, id: id}, nil
}

func (s *session) DeclarePresenceListener(keyExpr string, onChange func(bool)) (transport.PresenceListener, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	s.nextID++
	id := idFor(s.nextID)
	s.listeners[id] = &presenceListener{keyExpr: keyExpr, onChange: onChange}
	s.mu.Unlock()
	return &listenerHandle{session: s, id: id}, nil
}

func (s *session) HasMatchingSubscribers(keyExpr string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMatchLocked(keyExpr), nil
}

func (s *session) hasMatchLocked(keyExpr string) bool {
	for _, sub := range s.subscribers {
		if transport.Match(sub.keyExpr, keyExpr) || transport.Match(keyExpr, sub.keyExpr) {
			return true
		}
	}
	return false
}

// notifyPresenceLocked fires every presence listener whose pattern's
// match state changed, reflecting the current subscriber set. It is
// called with s.mu not held, right after a subscriber map mutation, and
// takes the write lock itself (it updates each listener's lastSeen),
// releasing it before any onChange callback runs.
func (s *session) notifyPresenceLocked() {
	s.mu.Lock()
	type fire struct {
		fn      func(bool)
		present bool
	}
	var fires []fire
	for _, l := range s.listeners {
		present := s.hasMatchLocked(l.keyExpr)
		if present != l.lastSeen {
			l.lastSeen = present
			fires = append(fires, fire{l.onChange, present})
		}
	}
	s.mu.Unlock()

	for _, f := range fires {
		f.fn(f.present)
	}
}

func (s *session) publish(ctx context.Context, keyExpr string, payload []byte, attachment string) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return errClosed
	}
	var targets []func(transport.Sample)
	for _, sub := range s.subscribers {
		if transport.Match(sub.keyExpr, keyExpr) {
			targets = append(targets, sub.onSample)
		}
	}
	s.mu.RUnlock()

	sample := transport.Sample{
		Payload:    payload,
		Attachment: attachment,
		KeyExpr:    keyExpr,
		Timestamp:  time.Now(),
	}
	for _, deliver := range targets {
		deliver(sample)
	}
	return nil
}

func (s *session) unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subscribers, id)
	s.mu.Unlock()
	s.notifyPresenceLocked()
}

func (s *session) undeclareListener(id string) {
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = nil
	s.listeners = nil
	return nil
}

type publisher struct {
	session *session
	keyExpr string
}

func (p *publisher) Put(ctx context.Context, payload []byte, attachment string) error {
	return p.session.publish(ctx, p.keyExpr, payload, attachment)
}

func (p *publisher) Undeclare() error { return nil }

type subscriber struct {
	session *session
	id      string
}

func (s *subscriber) Undeclare() error {
	s.session.unsubscribe(s.id)
	return nil
}

type listenerHandle struct {
	session *session
	id      string
}

func (l *listenerHandle) Undeclare() error {
	l.session.undeclareListener(l.id)
	return nil
}
