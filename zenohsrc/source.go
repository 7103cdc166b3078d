package zenohsrc

import (
	"sync"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/lifecycle"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/stats"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// fifoCapacity is the bounded FIFO's fixed capacity (spec §4.4: "a
// bounded FIFO handler of fixed capacity").
const fifoCapacity = 64

// resources is the subscriber's active receiver-side state, per spec
// §3's "Subscriber resources" row.
type resources struct {
	handle     *session.Handle
	subscriber transport.Subscriber
	fifo       *fifo
}

// Element is the subscriber element's core state. It has no dependency
// on any host-framework type; the plugin package adapts this to real
// go-gst base.Src hooks.
type Element struct {
	mu  sync.Mutex
	cfg config.SubscriberConfig

	machine lifecycle.Machine
	Stats   stats.Counters

	capsState CapsState
	res       *resources
}

// New returns an Element configured with cfg.
func New(cfg config.SubscriberConfig) *Element {
	return &Element{cfg: cfg}
}

// Config returns a copy of the element's current configuration.
func (e *Element) Config() config.SubscriberConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the configuration, rejecting changes to the
// locked Common fields once the element is Ready or above (spec §4.1).
func (e *Element) SetConfig(cfg config.SubscriberConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.Current() != lifecycle.Null {
		if cfg.Common != e.cfg.Common {
			return errs.New(errs.StateConflict, "zenohsrc.SetConfig",
				"resource name, config path, QoS, or session-group cannot change once the element is Ready or above")
		}
	}
	e.cfg = cfg
	return nil
}

// Start performs the null->ready transition (spec §4.4): resolves the
// session, declares the subscription, and arms a bounded FIFO fed by
// the transport's delivery callback.
func (e *Element) Start(registry *session.Registry, open transport.Opener) error {
	return e.machine.Transition(lifecycle.Ready, func() error {
		e.mu.Lock()
		cfg := e.cfg
		e.mu.Unlock()

		if err := config.ValidateSubscriber(cfg); err != nil {
			return errs.Wrap(errs.ResourceName, "zenohsrc.Start", err)
		}

		tcfg, err := config.LoadTransportConfig(cfg.ConfigPath)
		if err != nil {
			return errs.Wrap(errs.ResourceInit, "zenohsrc.Start", err)
		}

		handle, err := registry.Acquire(cfg.SessionGroup, tcfg, open)
		if err != nil {
			return err
		}

		f := newFifo(fifoCapacity, &e.Stats)
		sub, err := handle.Session.DeclareSubscriber(cfg.KeyExpr, cfg.QoS, f.push)
		if err != nil {
			handle.Release()
			return errs.Wrap(errs.ResourceInit, "zenohsrc.Start", err)
		}

		e.mu.Lock()
		e.res = &resources{handle: handle, subscriber: sub, fifo: f}
		e.mu.Unlock()
		return nil
	})
}

// Activate performs the ready->paused transition: resets the caps clock
// so the next decoded sample's caps are pushed fresh.
func (e *Element) Activate() error {
	return e.machine.Transition(lifecycle.Paused, func() error {
		e.capsState.Reset()
		return nil
	})
}

// Play performs the paused->playing transition.
func (e *Element) Play() error {
	return e.machine.Transition(lifecycle.Playing, func() error { return nil })
}

// Pause performs the playing->paused transition. A Create call
// currently blocked on the FIFO wakes on its own within the configured
// receive-timeout (spec §5's bound on suspended data-path calls).
func (e *Element) Pause() error {
	return e.machine.Transition(lifecycle.Paused, func() error { return nil })
}

// Deactivate performs the paused->ready transition.
func (e *Element) Deactivate() error {
	return e.machine.Transition(lifecycle.Ready, func() error { return nil })
}

// Stop performs the ready->null transition: closes the FIFO (so any
// in-flight Create returns promptly), undeclares the subscription, and
// releases the session.
func (e *Element) Stop() error {
	return e.machine.Transition(lifecycle.Null, func() error {
		e.mu.Lock()
		res := e.res
		e.res = nil
		e.mu.Unlock()

		if res == nil {
			return nil
		}
		res.fifo.close()
		res.subscriber.Undeclare()
		res.handle.Release()
		return nil
	})
}

// CreateResult is what Create returns to the framework caller.
type CreateResult struct {
	// TryAgain reports an empty FIFO after the receive timeout: the
	// framework should call Create again rather than treat this as an
	// error (spec §4.4 step 1).
	TryAgain bool
	// Done reports that the element has shut down; the framework should
	// stop calling Create.
	Done bool
	// CapsUpdate, if non-nil, must be pushed downstream before Buffer.
	CapsUpdate *string
	Buffer     *Buffer
}

// Create implements the framework's create call (spec §4.4): pop the
// FIFO with the configured timeout, decode the sample, update Stats,
// and return either a buffer, a try-again, a done, or a surfaced error.
//
// The FeatureMissing case returns both a non-nil Result (Buffer carries
// the raw, still-encoded payload, per step 3's "pass the raw bytes
// through") and a non-nil error: the error is what marks that buffer as
// not valid decoded content (spec §8 scenario S6, "no buffer with
// corrupt content is emitted downstream as valid") while still letting
// the caller choose to forward the raw bytes rather than drop them
// silently. StreamCorrupt has no recoverable bytes, so its Result is
// always empty.
func (e *Element) Create() (CreateResult, error) {
	e.mu.Lock()
	res := e.res
	cfg := e.cfg
	e.mu.Unlock()

	if res == nil {
		return CreateResult{}, errs.New(errs.StateConflict, "zenohsrc.Create", "element has no active subscription")
	}

	sample, pr := res.fifo.pop(time.Duration(cfg.ReceiveTimeoutMS) * time.Millisecond)
	switch pr {
	case popTimeout:
		return CreateResult{TryAgain: true}, nil
	case popShutdown:
		return CreateResult{Done: true}, nil
	}

	out := DecodeSample(cfg.ApplyBufferMeta, &e.capsState, sample)

	if out.Err != nil {
		e.Stats.AddErrors(1)
	}
	if out.Buffer != nil {
		e.Stats.AddMessagesReceived(1)
		e.Stats.AddBytesReceived(uint64(out.Bytes))
	}

	if out.Buffer == nil {
		return CreateResult{}, out.Err
	}
	return CreateResult{CapsUpdate: out.CapsUpdate, Buffer: out.Buffer}, out.Err
}
