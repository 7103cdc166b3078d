package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/e7canasta/gst-plugin-zenoh/errs"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

type entry struct {
	count   int
	session transport.Session
}

// Registry is the process-wide, mutex-guarded table from session-group
// name to refcounted transport.Session. The zero value is not usable;
// construct one with NewRegistry. Default is the package-level instance
// production elements share; tests that need isolation construct their
// own with NewRegistry.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	nextAnon uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Default is the registry production elements acquire sessions from
// unless a test constructs its own Registry for isolation.
var Default = NewRegistry()

// Handle is what Acquire returns: the shared (or, for an empty group,
// exclusive) transport.Session plus a uuid tag for log correlation.
// Release must be called exactly once per Handle; it is safe to call
// more than once (later calls are no-ops) but must be called at least
// once or the underlying session leaks.
type Handle struct {
	ID      string
	Session transport.Session

	registry *Registry
	key      string
	once     sync.Once
}

// Release decrements the session's refcount, tearing the session down
// via transport.Session.Close when the count reaches zero.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.registry.release(h.key)
	})
}

// Acquire resolves group to a session: if group is non-empty and an
// entry already exists, its refcount is incremented and its session
// returned; otherwise a new session is opened via open(cfg) and
// recorded with count 1. An empty group never shares: each call opens
// and owns its own session (spec §4.6).
func (r *Registry) Acquire(group string, cfg transport.Config, open transport.Opener) (*Handle, error) {
	key := group

	r.mu.Lock()
	if group == "" {
		r.nextAnon++
		key = fmt.Sprintf("\x00anon-%d", r.nextAnon)
	} else if e, ok := r.entries[key]; ok {
		e.count++
		r.mu.Unlock()
		return &Handle{ID: uuid.NewString(), Session: e.session, registry: r, key: key}, nil
	}
	r.mu.Unlock()

	sess, err := open(cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ResourceInit, "session.Acquire", err)
	}

	r.mu.Lock()
	// Another Acquire for the same group may have created the entry
	// while this one was opening its own session (open runs without the
	// lock held, since it may do I/O). If so, join the winner's entry
	// and discard the session just opened rather than leaking a second
	// live session for one group.
	if group != "" {
		if e, ok := r.entries[key]; ok {
			e.count++
			r.mu.Unlock()
			sess.Close()
			return &Handle{ID: uuid.NewString(), Session: e.session, registry: r, key: key}, nil
		}
	}
	r.entries[key] = &entry{count: 1, session: sess}
	r.mu.Unlock()

	return &Handle{ID: uuid.NewString(), Session: sess, registry: r, key: key}, nil
}

func (r *Registry) release(key string) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.count--
	if e.count > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	e.session.Close()
}

// Count reports the live refcount for a non-empty group, 0 if no entry
// exists. It exists for tests and diagnostics (spec §8 property 4, §8
// scenario S5); it is not meaningful for an empty group, since empty
// groups never share an entry to count.
func (r *Registry) Count(group string) int {
	if group == "" {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[group]; ok {
		return e.count
	}
	return 0
}
