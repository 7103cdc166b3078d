package zenohdemux

import (
	"sync"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/lifecycle"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/stats"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// resources is the demultiplexer's active receiver-side state: the
// wildcard subscription plus the port map, which persists until
// element teardown (spec §3's "Output port record" row).
type resources struct {
	handle     *session.Handle
	subscriber transport.Subscriber
	ports      *portRegistry
}

// Element is the demultiplexer element's core state. It has no
// dependency on any host-framework type; the plugin package adapts
// this to a plain go-gst gst.Element with dynamic pad creation.
type Element struct {
	mu  sync.Mutex
	cfg config.DemuxConfig

	machine lifecycle.Machine
	Stats   stats.Counters

	res *resources

	// OnRoute is invoked synchronously, on the transport's delivery
	// thread, once per received sample, after Stats has already been
	// updated for that sample. The plugin layer uses RouteResult to
	// create/look up the real pad, push the synthetic stream-start and
	// segment events on PortCreated, push CapsUpdate, and push Buffer.
	// It must not block.
	OnRoute func(RouteResult)
}

// New returns an Element configured with cfg.
func New(cfg config.DemuxConfig) *Element {
	return &Element{cfg: cfg}
}

// Config returns a copy of the element's current configuration.
func (e *Element) Config() config.DemuxConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the configuration, rejecting changes to the
// locked Common fields once the element is Ready or above (spec §4.1).
func (e *Element) SetConfig(cfg config.DemuxConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.Current() != lifecycle.Null {
		if cfg.Common != e.cfg.Common {
			return errs.New(errs.StateConflict, "zenohdemux.SetConfig",
				"resource name, config path, QoS, or session-group cannot change once the element is Ready or above")
		}
	}
	e.cfg = cfg
	return nil
}

// PortCount returns the number of distinct output ports created so
// far, 0 before Start or after Stop.
func (e *Element) PortCount() int {
	e.mu.Lock()
	res := e.res
	e.mu.Unlock()
	if res == nil {
		return 0
	}
	return res.ports.count()
}

// Start performs the null->ready transition (spec §4.5, §4.1):
// resolves the session and declares the wildcard subscription. Every
// sample the subscription receives from this point on is routed
// through handleSample on the transport's own delivery thread.
func (e *Element) Start(registry *session.Registry, open transport.Opener) error {
	return e.machine.Transition(lifecycle.Ready, func() error {
		e.mu.Lock()
		cfg := e.cfg
		e.mu.Unlock()

		if err := config.ValidateDemux(cfg); err != nil {
			return errs.Wrap(errs.ResourceName, "zenohdemux.Start", err)
		}

		tcfg, err := config.LoadTransportConfig(cfg.ConfigPath)
		if err != nil {
			return errs.Wrap(errs.ResourceInit, "zenohdemux.Start", err)
		}

		handle, err := registry.Acquire(cfg.SessionGroup, tcfg, open)
		if err != nil {
			return err
		}

		res := &resources{handle: handle, ports: newPortRegistry()}

		sub, err := handle.Session.DeclareSubscriber(cfg.KeyExpr, cfg.QoS, func(s transport.Sample) {
			e.handleSample(res, s)
		})
		if err != nil {
			handle.Release()
			return errs.Wrap(errs.ResourceInit, "zenohdemux.Start", err)
		}
		res.subscriber = sub

		e.mu.Lock()
		e.res = res
		e.mu.Unlock()
		return nil
	})
}

// Activate performs the ready->paused transition.
func (e *Element) Activate() error {
	return e.machine.Transition(lifecycle.Paused, func() error { return nil })
}

// Play performs the paused->playing transition.
func (e *Element) Play() error {
	return e.machine.Transition(lifecycle.Playing, func() error { return nil })
}

// Pause performs the playing->paused transition.
func (e *Element) Pause() error {
	return e.machine.Transition(lifecycle.Paused, func() error { return nil })
}

// Deactivate performs the paused->ready transition.
func (e *Element) Deactivate() error {
	return e.machine.Transition(lifecycle.Ready, func() error { return nil })
}

// Stop performs the ready->null transition: undeclares the
// subscription and releases the session. Output ports are not
// individually torn down here; they are owned by the plugin layer's
// real pads, which the framework removes on element teardown (spec §3:
// "persists until element teardown").
func (e *Element) Stop() error {
	return e.machine.Transition(lifecycle.Null, func() error {
		e.mu.Lock()
		res := e.res
		e.res = nil
		e.mu.Unlock()

		if res == nil {
			return nil
		}
		res.subscriber.Undeclare()
		res.handle.Release()
		return nil
	})
}

// handleSample runs the routing algorithm for one received sample and
// folds the outcome into Stats before forwarding it to OnRoute.
func (e *Element) handleSample(res *resources, sample transport.Sample) {
	e.mu.Lock()
	naming := e.cfg.PadNaming
	applyBufferMeta := e.cfg.ApplyBufferMeta
	onRoute := e.OnRoute
	e.mu.Unlock()

	result := Route(res.ports, naming, applyBufferMeta, sample)

	if result.PortCreated {
		e.Stats.AddPadsCreated(1)
	}
	if result.Err != nil {
		e.Stats.AddErrors(1)
	}
	if result.Buffer != nil {
		e.Stats.AddMessagesReceived(1)
		e.Stats.AddBytesReceived(uint64(len(result.Buffer.Payload)))
	}

	if onRoute != nil {
		onRoute(result)
	}
}
