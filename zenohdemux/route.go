package zenohdemux

import (
	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/zenohsrc"
)

// RouteResult is what Route produces for one sample, for the caller to
// push onto the resolved output port.
type RouteResult struct {
	PortName string
	// PortCreated reports whether this sample's port did not exist
	// before this call (caller emits "port-added" and increments
	// pads-created exactly once per distinct name).
	PortCreated bool
	// FirstSampleOnPort reports whether this is the first sample ever
	// routed to PortName: the caller must emit a synthetic stream-start
	// and segment event before CapsUpdate/Buffer (spec §4.5 step 4).
	FirstSampleOnPort bool
	CapsUpdate        *string
	Buffer            *zenohsrc.Buffer
	Err               error
}

// resolveConcreteName implements spec §4.5 step 1: the envelope's
// zenoh.key-expr if the publisher side supplied one (the usual case,
// set by a demultiplexer-aware publisher or an intermediate forwarder),
// else the transport's own per-sample source key.
func resolveConcreteName(env envelope.Envelope, sample transport.Sample) string {
	if env.SourceKeyExpr != nil && *env.SourceKeyExpr != "" {
		return *env.SourceKeyExpr
	}
	return sample.KeyExpr
}

// Route implements the demultiplexer's routing algorithm (spec §4.5
// steps 1-6) for one sample already received on the wildcard
// subscription. registry supplies port create-if-absent; naming is the
// configured port-name strategy; applyBufferMeta mirrors
// config.DemuxConfig.ApplyBufferMeta.
func Route(registry *portRegistry, naming config.PadNaming, applyBufferMeta bool, sample transport.Sample) RouteResult {
	env := envelope.Decode(sample.Attachment)
	name := resolveConcreteName(env, sample)
	pname := padName(naming, name)

	p, created := registry.getOrCreate(pname)
	firstSample := p.firstSample.CompareAndSwap(true, false)

	p.capsMu.Lock()
	out := zenohsrc.DecodeEnvelope(env, applyBufferMeta, &p.capsState, sample)
	p.capsMu.Unlock()

	return RouteResult{
		PortName:          pname,
		PortCreated:       created,
		FirstSampleOnPort: firstSample,
		CapsUpdate:        out.CapsUpdate,
		Buffer:            out.Buffer,
		Err:               out.Err,
	}
}
