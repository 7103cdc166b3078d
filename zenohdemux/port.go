package zenohdemux

import (
	"sync"
	"sync/atomic"

	"github.com/e7canasta/gst-plugin-zenoh/zenohsrc"
)

// port is one output port's state. firstSample is consumed exactly
// once, by whichever call to Route first observes it true, to decide
// whether to emit the synthetic stream-start/segment pair (spec §4.5
// step 4). capsState is this port's own "last seen caps" clock: each
// concrete resource name negotiates caps independently of its
// siblings, so the clock cannot be shared across ports the way a
// subscriber element's single clock can.
type port struct {
	name        string
	firstSample atomic.Bool

	capsMu    sync.Mutex
	capsState zenohsrc.CapsState
}

// portRegistry is the demultiplexer's name-to-port map, guarded only
// long enough to look up or insert (spec §5: "guarded briefly to look
// up or insert; push is done without the lock held"), the same shape as
// framebus/internal/bus's subscriber map generalized from a flat list
// of subscriber channels to a lazily-created map of output ports.
type portRegistry struct {
	mu    sync.Mutex
	ports map[string]*port
}

func newPortRegistry() *portRegistry {
	return &portRegistry{ports: make(map[string]*port)}
}

// getOrCreate returns the port for name, creating it if this is the
// first sample routed to that name. created reports whether this call
// created it, so the caller can emit "port-added" and increment
// pads-created exactly once per distinct name.
func (r *portRegistry) getOrCreate(name string) (p *port, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.ports[name]; ok {
		return existing, false
	}
	p = &port{name: name}
	p.firstSample.Store(true)
	r.ports[name] = p
	return p, true
}

// count returns the number of distinct ports created so far.
func (r *portRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ports)
}
