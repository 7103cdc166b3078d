package stats

import "sync/atomic"

// Counters is embedded by each element's running resources. Every field
// is updated with the sync/atomic package only, so the data path never
// takes a lock to report what it did, per spec §5's shared-resource
// policy.
type Counters struct {
	messagesSent     atomic.Uint64
	messagesReceived atomic.Uint64
	bytesSent        atomic.Uint64
	bytesReceived    atomic.Uint64
	errors           atomic.Uint64
	dropped          atomic.Uint64

	// Publisher-only.
	bytesBeforeCompression atomic.Uint64
	bytesAfterCompression  atomic.Uint64

	// Demux-only.
	padsCreated atomic.Uint64
}

func (c *Counters) AddMessagesSent(n uint64)     { c.messagesSent.Add(n) }
func (c *Counters) AddMessagesReceived(n uint64) { c.messagesReceived.Add(n) }
func (c *Counters) AddBytesSent(n uint64)        { c.bytesSent.Add(n) }
func (c *Counters) AddBytesReceived(n uint64)    { c.bytesReceived.Add(n) }
func (c *Counters) AddErrors(n uint64)           { c.errors.Add(n) }
func (c *Counters) AddDropped(n uint64)          { c.dropped.Add(n) }

func (c *Counters) AddBytesBeforeCompression(n uint64) { c.bytesBeforeCompression.Add(n) }
func (c *Counters) AddBytesAfterCompression(n uint64)  { c.bytesAfterCompression.Add(n) }

func (c *Counters) AddPadsCreated(n uint64) { c.padsCreated.Add(n) }

// Snapshot is a point-in-time, non-atomic copy of Counters for reporting
// (property getters, CLI inspection, bus messages).
type Snapshot struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
	Errors           uint64
	Dropped          uint64

	BytesBeforeCompression uint64
	BytesAfterCompression  uint64

	PadsCreated uint64
}

// Snapshot reads every counter once. Reads are independent atomic loads,
// so a Snapshot taken concurrently with data-path updates may observe a
// slightly inconsistent combination (e.g. BytesSent advanced one message
// ahead of MessagesSent) — acceptable for a read-only reporting surface
// that is, by spec §3, "read-only from outside".
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		MessagesSent:           c.messagesSent.Load(),
		MessagesReceived:       c.messagesReceived.Load(),
		BytesSent:              c.bytesSent.Load(),
		BytesReceived:          c.bytesReceived.Load(),
		Errors:                 c.errors.Load(),
		Dropped:                c.dropped.Load(),
		BytesBeforeCompression: c.bytesBeforeCompression.Load(),
		BytesAfterCompression:  c.bytesAfterCompression.Load(),
		PadsCreated:            c.padsCreated.Load(),
	}
}
