package zenohsink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/lifecycle"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/stats"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// resources is the publisher's active sender-side state, per spec §3's
// "Publisher resources" row: allocated at null->ready, released at
// ready->null.
type resources struct {
	handle    *session.Handle
	publisher transport.Publisher
	listener  transport.PresenceListener
	presence  atomic.Bool
	// tornDown is checked by the presence-listener closure before it
	// touches the element at all: it stands in for the weak-reference
	// upgrade §9's "Callback captured element reference" note asks for.
	// The transport's background thread may fire the closure concurrently
	// with Stop tearing resources down; once tornDown is set the closure
	// drops the notification silently instead of racing Stop's cleanup.
	tornDown atomic.Bool
}

// Element is the publisher element's core state: configuration, the
// five-state machine, running resources once Ready, and statistics.
// It has no dependency on any host-framework type; the plugin package
// adapts this to real go-gst hooks.
type Element struct {
	mu  sync.Mutex
	cfg config.PublisherConfig

	machine lifecycle.Machine
	Stats   stats.Counters

	capsState CapsState
	res       *resources

	// OnMatchingChanged is invoked on every presence transition with the
	// new value. The plugin layer sets this to emit the framework's
	// matching-changed signal and zenoh-matching-changed bus message;
	// it must not block.
	OnMatchingChanged func(present bool)
}

// New returns an Element configured with cfg. cfg is not validated until
// Start, matching spec §4.1: fields are only locked (and therefore only
// meaningfully wrong) from Ready onward.
func New(cfg config.PublisherConfig) *Element {
	return &Element{cfg: cfg}
}

// Config returns a copy of the element's current configuration.
func (e *Element) Config() config.PublisherConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the configuration. Fields spec §4.1 locks once the
// element is Ready or above (resource name, config path, QoS, express,
// session-group) are rejected with errs.StateConflict if changed while
// at or above Ready; per-buffer fields may change in any state.
func (e *Element) SetConfig(cfg config.PublisherConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.Current() != lifecycle.Null {
		if cfg.Common != e.cfg.Common {
			return errs.New(errs.StateConflict, "zenohsink.SetConfig",
				"resource name, config path, QoS, or session-group cannot change once the element is Ready or above")
		}
	}
	e.cfg = cfg
	return nil
}

// HasSubscribers reports the current presence flag value. It is safe to
// call in any state; it reads false when there are no running resources.
func (e *Element) HasSubscribers() bool {
	e.mu.Lock()
	res := e.res
	e.mu.Unlock()
	if res == nil {
		return false
	}
	return res.presence.Load()
}

// Start performs the null->ready transition (spec §4.1): resolves the
// session, declares the publisher, installs the presence listener, and
// probes initial presence once.
func (e *Element) Start(registry *session.Registry, open transport.Opener) error {
	return e.machine.Transition(lifecycle.Ready, func() error {
		e.mu.Lock()
		cfg := e.cfg
		e.mu.Unlock()

		if err := config.ValidatePublisher(cfg); err != nil {
			return errs.Wrap(errs.ResourceName, "zenohsink.Start", err)
		}

		tcfg, err := config.LoadTransportConfig(cfg.ConfigPath)
		if err != nil {
			return errs.Wrap(errs.ResourceInit, "zenohsink.Start", err)
		}

		handle, err := registry.Acquire(cfg.SessionGroup, tcfg, open)
		if err != nil {
			return err
		}

		pub, err := handle.Session.DeclarePublisher(cfg.KeyExpr, cfg.QoS)
		if err != nil {
			handle.Release()
			return errs.Wrap(errs.ResourceInit, "zenohsink.Start", err)
		}

		res := &resources{handle: handle, publisher: pub}

		listener, err := handle.Session.DeclarePresenceListener(cfg.KeyExpr, func(present bool) {
			if res.tornDown.Load() {
				return
			}
			res.presence.Store(present)
			if e.OnMatchingChanged != nil {
				e.OnMatchingChanged(present)
			}
		})
		if err != nil {
			pub.Undeclare()
			handle.Release()
			return errs.Wrap(errs.ResourceInit, "zenohsink.Start", err)
		}
		res.listener = listener

		if initial, err := handle.Session.HasMatchingSubscribers(cfg.KeyExpr); err == nil {
			res.presence.Store(initial)
		}

		e.mu.Lock()
		e.res = res
		e.mu.Unlock()
		return nil
	})
}

// Activate performs the ready->paused transition: allocates running
// resources (here, just resetting the caps-retransmission clock).
func (e *Element) Activate() error {
	return e.machine.Transition(lifecycle.Paused, func() error {
		e.capsState.Reset()
		return nil
	})
}

// Play performs the paused->playing transition. No structural change;
// data flow becomes permissible (spec §4.1).
func (e *Element) Play() error {
	return e.machine.Transition(lifecycle.Playing, func() error { return nil })
}

// Pause performs the playing->paused transition.
func (e *Element) Pause() error {
	return e.machine.Transition(lifecycle.Paused, func() error { return nil })
}

// Deactivate performs the paused->ready transition: drops running
// resources, keeps transport resources.
func (e *Element) Deactivate() error {
	return e.machine.Transition(lifecycle.Ready, func() error { return nil })
}

// Stop performs the ready->null transition: undeclares the publisher
// and presence listener, and releases the session via the registry.
func (e *Element) Stop() error {
	return e.machine.Transition(lifecycle.Null, func() error {
		e.mu.Lock()
		res := e.res
		e.res = nil
		e.mu.Unlock()

		if res == nil {
			return nil
		}
		res.tornDown.Store(true)
		res.listener.Undeclare()
		res.publisher.Undeclare()
		res.handle.Release()
		return nil
	})
}

// Render implements the publisher's per-buffer render contract (spec
// §4.3) for a single inbound buffer, folding the outcome into Stats.
// It returns a non-nil error only when the failure must be surfaced to
// the framework (a "block" congestion policy failure, or the element
// not being in a state with live resources).
func (e *Element) Render(ctx context.Context, in RenderInput) error {
	e.mu.Lock()
	res := e.res
	cfg := e.cfg
	e.mu.Unlock()

	if res == nil {
		return errs.New(errs.StateConflict, "zenohsink.Render", "element has no active publisher")
	}

	out := render(ctx, res.publisher, cfg, &e.capsState, time.Now(), in)

	if out.published {
		e.Stats.AddMessagesSent(1)
		e.Stats.AddBytesSent(uint64(out.bytesAfterCompression))
	}
	e.Stats.AddBytesBeforeCompression(uint64(out.bytesBeforeCompression))
	e.Stats.AddBytesAfterCompression(uint64(out.bytesAfterCompression))
	if out.publishErr != nil {
		e.Stats.AddErrors(1)
	}

	return out.surfaceErr
}

// RenderList implements the framework's buffer-list delivery: each
// buffer in ins is rendered in order. Under the "block" congestion
// policy, a failure aborts the remainder of the list; under "drop", the
// failure is counted (by Render, via Stats.AddErrors) and the loop
// continues (spec §4.3 "Batching").
func (e *Element) RenderList(ctx context.Context, ins []RenderInput) error {
	e.mu.Lock()
	congestion := e.cfg.QoS.Congestion
	e.mu.Unlock()

	for _, in := range ins {
		if err := e.Render(ctx, in); err != nil {
			if congestion != transport.CongestionDrop {
				return err
			}
		}
	}
	return nil
}
