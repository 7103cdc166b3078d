package zenohsrc

import (
	"sync"
	"time"

	"github.com/e7canasta/gst-plugin-zenoh/stats"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// popResult distinguishes why pop returned, mirroring the three outcomes
// the framework's create call needs to tell apart (spec §4.4 step 1 and
// the shutdown path).
type popResult int

const (
	popOK popResult = iota
	popTimeout
	popShutdown
)

// fifo is the bounded, shutdown-interruptible queue the transport feeds
// and the element drains, adapted from framebus/internal/bus's
// channel-backed subscriber holder (non-blocking push, drop-on-full,
// counted) generalized from fan-out to a single consumer, plus a
// shutdown channel closed exactly once so a blocked pop wakes
// immediately instead of on the next timeout tick.
type fifo struct {
	ch        chan transport.Sample
	shutdown  chan struct{}
	closeOnce sync.Once
	stats     *stats.Counters
}

func newFifo(capacity int, st *stats.Counters) *fifo {
	return &fifo{
		ch:       make(chan transport.Sample, capacity),
		shutdown: make(chan struct{}),
		stats:    st,
	}
}

// push delivers a sample from the transport's own thread. It never
// blocks: a full FIFO drops the sample and increments the dropped
// counter, the same backpressure policy framebus.bus applies to its
// DropNew subscribers.
func (f *fifo) push(s transport.Sample) {
	select {
	case f.ch <- s:
	default:
		f.stats.AddDropped(1)
	}
}

// pop blocks up to timeout for a sample, or returns immediately once
// close has been called.
func (f *fifo) pop(timeout time.Duration) (transport.Sample, popResult) {
	select {
	case s := <-f.ch:
		return s, popOK
	case <-f.shutdown:
		return transport.Sample{}, popShutdown
	case <-time.After(timeout):
		return transport.Sample{}, popTimeout
	}
}

// close interrupts any in-flight or future pop. Safe to call more than
// once; only the first call has effect.
func (f *fifo) close() {
	f.closeOnce.Do(func() { close(f.shutdown) })
}
