package natstransport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

const (
	attachmentHeader = "Zenoh-Attachment"
	liveSubject       = "_live"
	beaconSeparator   = "\x1f" // unit separator, never appears in a key expression
)

type natSession struct {
	conn      *nats.Conn
	presence  *presenceRegistry
	beaconSub *nats.Subscription

	mu        sync.Mutex
	beaconers map[string]chan struct{}
}

// Open connects to the NATS server named by cfg.Raw["url"] (default
// nats.DefaultURL) and returns a transport.Session backed by it. Open
// satisfies transport.Opener.
func Open(cfg transport.Config) (transport.Session, error) {
	url := nats.DefaultURL
	if cfg.Raw != nil {
		if u, ok := cfg.Raw["url"]; ok && u != "" {
			url = u
		}
	}

	conn, err := nats.Connect(url, nats.Name("gst-plugin-zenoh"))
	if err != nil {
		return nil, fmt.Errorf("natstransport: connect %s: %w", url, err)
	}

	s := &natSession{
		conn:      conn,
		presence:  newPresenceRegistry(),
		beaconers: make(map[string]chan struct{}),
	}

	sub, err := conn.Subscribe(liveSubject, s.handleBeacon)
	if err != nil {
		conn.Close()
		s.presence.close()
		return nil, fmt.Errorf("natstransport: subscribe beacon subject: %w", err)
	}
	s.beaconSub = sub

	return s, nil
}

func (s *natSession) handleBeacon(msg *nats.Msg) {
	id, pattern, ok := strings.Cut(string(msg.Data), beaconSeparator)
	if !ok {
		return
	}
	s.presence.onBeacon(id, pattern)
}

func (s *natSession) DeclarePublisher(keyExpr string, qos transport.QoS) (transport.Publisher, error) {
	if err := transport.ValidateKeyExpr(keyExpr); err != nil {
		return nil, err
	}
	return &natPublisher{conn: s.conn, subject: keyExprToSubject(keyExpr)}, nil
}

func (s *natSession) DeclareSubscriber(keyExpr string, qos transport.QoS, onSample func(transport.Sample)) (transport.Subscriber, error) {
	if err := transport.ValidateKeyExpr(keyExpr); err != nil {
		return nil, err
	}

	subject := keyExprToSubject(keyExpr)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		attachment := ""
		if msg.Header != nil {
			attachment = msg.Header.Get(attachmentHeader)
		}
		onSample(transport.Sample{
			Payload:    msg.Data,
			Attachment: attachment,
			KeyExpr:    subjectToKeyExpr(msg.Subject),
			Timestamp:  time.Now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("natstransport: subscribe %s: %w", subject, err)
	}

	id := uuid.NewString()
	stop := make(chan struct{})
	s.mu.Lock()
	s.beaconers[id] = stop
	s.mu.Unlock()
	go s.beaconLoop(id, keyExpr, stop)

	return &natSubscriber{session: s, sub: sub, beaconID: id}, nil
}

func (s *natSession) beaconLoop(id, keyExpr string, stop chan struct{}) {
	ticker := time.NewTicker(beaconInterval)
	defer ticker.Stop()
	beacon := func() {
		payload := id + beaconSeparator + keyExpr
		s.conn.Publish(liveSubject, []byte(payload))
	}
	beacon()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			beacon()
		}
	}
}

func (s *natSession) stopBeaconing(id string) {
	s.mu.Lock()
	stop, ok := s.beaconers[id]
	if ok {
		delete(s.beaconers, id)
	}
	s.mu.Unlock()
	if ok {
		close(stop)
	}
}

func (s *natSession) DeclarePresenceListener(keyExpr string, onChange func(bool)) (transport.PresenceListener, error) {
	id := s.presence.addListener(keyExpr, onChange)
	return &natPresenceListener{session: s, id: id}, nil
}

func (s *natSession) HasMatchingSubscribers(keyExpr string) (bool, error) {
	return s.presence.hasMatch(keyExpr), nil
}

func (s *natSession) Close() error {
	s.mu.Lock()
	for _, stop := range s.beaconers {
		close(stop)
	}
	s.beaconers = nil
	s.mu.Unlock()

	s.presence.close()
	if s.beaconSub != nil {
		s.beaconSub.Unsubscribe()
	}
	s.conn.Close()
	return nil
}

type natPublisher struct {
	conn    *nats.Conn
	subject string
}

func (p *natPublisher) Put(ctx context.Context, payload []byte, attachment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: p.subject,
		Data:    payload,
	}
	if attachment != "" {
		msg.Header = nats.Header{attachmentHeader: []string{attachment}}
	}
	return p.conn.PublishMsg(msg)
}

func (p *natPublisher) Undeclare() error { return nil }

type natSubscriber struct {
	session  *natSession
	sub      *nats.Subscription
	beaconID string
}

func (s *natSubscriber) Undeclare() error {
	s.session.stopBeaconing(s.beaconID)
	return s.sub.Unsubscribe()
}

type natPresenceListener struct {
	session *natSession
	id      string
}

func (l *natPresenceListener) Undeclare() error {
	l.session.presence.removeListener(l.id)
	return nil
}
