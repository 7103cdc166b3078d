package plugin

import (
	"fmt"
	"sync"

	"github.com/tinyzimmer/go-glib/glib"
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/e7canasta/gst-plugin-zenoh/session"
	"github.com/e7canasta/gst-plugin-zenoh/zenohdemux"
)

// zenohDemuxElement is the demultiplexer's host-framework adapter. It
// has no base class to inherit a pull-driven Create hook from: samples
// arrive on the transport's own delivery thread and must be pushed
// downstream from there, so this type extends gst.Element directly and
// manages its dynamically created src pads itself, the way a
// GStreamer demuxer that discovers streams at runtime always does.
type zenohDemuxElement struct {
	*gst.Element

	core *zenohdemux.Element

	padsMu sync.Mutex
	pads   map[string]*gst.Pad
}

func extendsZenohDemux() glib.GoObjectSubclass {
	e := &zenohDemuxElement{pads: make(map[string]*gst.Pad)}
	e.core = zenohdemux.New(config.DefaultDemuxConfig())
	return e
}

func (e *zenohDemuxElement) New() glib.GoObjectSubclass {
	n := extendsZenohDemux()
	return n
}

func (e *zenohDemuxElement) ClassInit() *glib.ObjectClass {
	class := glib.NewObjectClass("zenohdemux", "Demuxer/Network", "Demultiplexes a wildcard zenoh-style subscription into one pad per concrete resource name")
	for _, p := range commonParamSpecs() {
		class.InstallProperty(p)
	}
	for _, p := range []*glib.ParamSpec{
		glib.NewStringParam("pad-naming", "Pad Naming", "full-path, last-segment, or hash", "last-segment", glib.ParameterReadWrite),
		glib.NewBoolParam("apply-buffer-meta", "Apply Buffer Meta", "Reconstruct PTS/DTS/duration/offset/flags from the envelope", true, glib.ParameterReadWrite),
	} {
		class.InstallProperty(p)
	}
	for _, p := range statsParamSpecs() {
		class.InstallProperty(p)
	}
	class.InstallProperty(glib.NewUInt64Param("pads-created", "Pads Created", "Distinct output ports created so far", 0, ^uint64(0), 0, glib.ParameterReadable))

	class.AddPadTemplate(gst.NewPadTemplate("src_%s", gst.PadDirectionSource, gst.PadPresenceSometimes, gst.NewAnyCaps()))
	return class
}

func (e *zenohDemuxElement) SetProperty(name string, value *glib.Value) {
	cfg := e.core.Config()
	switch name {
	case "key-expr":
		cfg.KeyExpr, _ = value.GetString()
	case "config-path":
		cfg.ConfigPath, _ = value.GetString()
	case "priority":
		cfg.QoS.Priority, _ = value.GetInt()
	case "reliability":
		s, _ := value.GetString()
		cfg.QoS.Reliability = reliabilityFromString(s)
	case "congestion-control":
		s, _ := value.GetString()
		cfg.QoS.Congestion = congestionFromString(s)
	case "session-group":
		cfg.SessionGroup, _ = value.GetString()
	case "express":
		cfg.QoS.Express, _ = value.GetBool()
	case "pad-naming":
		s, _ := value.GetString()
		cfg.PadNaming = config.PadNaming(s)
	case "apply-buffer-meta":
		cfg.ApplyBufferMeta, _ = value.GetBool()
	default:
		return
	}
	e.core.SetConfig(cfg)
}

func (e *zenohDemuxElement) GetProperty(name string) *glib.Value {
	cfg := e.core.Config()
	stats := e.core.Stats.Snapshot()
	switch name {
	case "key-expr":
		return glib.NewValueString(cfg.KeyExpr)
	case "config-path":
		return glib.NewValueString(cfg.ConfigPath)
	case "priority":
		return glib.NewValueInt(cfg.QoS.Priority)
	case "reliability":
		return glib.NewValueString(string(cfg.QoS.Reliability))
	case "congestion-control":
		return glib.NewValueString(string(cfg.QoS.Congestion))
	case "session-group":
		return glib.NewValueString(cfg.SessionGroup)
	case "express":
		return glib.NewValueBool(cfg.QoS.Express)
	case "pad-naming":
		return glib.NewValueString(string(cfg.PadNaming))
	case "apply-buffer-meta":
		return glib.NewValueBool(cfg.ApplyBufferMeta)
	case "bytes-received":
		return glib.NewValueUInt64(stats.BytesReceived)
	case "messages-received":
		return glib.NewValueUInt64(stats.MessagesReceived)
	case "errors":
		return glib.NewValueUInt64(stats.Errors)
	case "dropped":
		return glib.NewValueUInt64(stats.Dropped)
	case "pads-created":
		return glib.NewValueUInt64(stats.PadsCreated)
	default:
		return nil
	}
}

// ChangeState is the demultiplexer's one lifecycle hook: since it has
// no base class, null<->ready and ready<->paused<->playing are all
// driven from the single vfunc_change_state override, mapped onto
// zenohdemux.Element's six transition methods in the same order
// GstElement itself walks them.
func (e *zenohDemuxElement) ChangeState(self *gst.Element, transition gst.StateChange) gst.StateChangeReturn {
	switch transition {
	case gst.StateChangeNullToReady:
		if err := e.startCore(self); err != nil {
			self.Error(gst.DomainResource, gst.ResourceOpenRead, "failed to start zenoh demultiplexer", err.Error())
			return gst.StateChangeFailure
		}
	case gst.StateChangeReadyToPaused:
		if err := e.core.Activate(); err != nil {
			return gst.StateChangeFailure
		}
	case gst.StateChangePausedToPlaying:
		if err := e.core.Play(); err != nil {
			return gst.StateChangeFailure
		}
	case gst.StateChangePlayingToPaused:
		if err := e.core.Pause(); err != nil {
			return gst.StateChangeFailure
		}
	case gst.StateChangePausedToReady:
		if err := e.core.Deactivate(); err != nil {
			return gst.StateChangeFailure
		}
	case gst.StateChangeReadyToNull:
		if err := e.core.Stop(); err != nil {
			return gst.StateChangeFailure
		}
		e.removeAllPads(self)
	}
	return gst.StateChangeSuccess
}

func (e *zenohDemuxElement) startCore(self *gst.Element) error {
	tcfg, err := config.LoadTransportConfig(e.core.Config().ConfigPath)
	if err != nil {
		return err
	}
	e.core.OnRoute = func(r zenohdemux.RouteResult) { e.handleRoute(self, r) }
	return e.core.Start(session.Default, selectOpener(tcfg))
}

// handleRoute implements the plugin-layer half of spec §4.5 step 4: on
// a port's first sample, create the real pad (and, since the set of
// resource names is open-ended, never call no-more-pads) and push the
// synthetic stream-start and segment events; push caps before the
// buffer whenever the route produced one.
func (e *zenohDemuxElement) handleRoute(self *gst.Element, r zenohdemux.RouteResult) {
	pad := e.padFor(self, r.PortName, r.PortCreated)

	if r.FirstSampleOnPort {
		pad.PushEvent(gst.NewStreamStartEvent(r.PortName))
		pad.PushEvent(gst.NewSegmentEvent(gst.NewFormattedSegment(gst.FormatTime)))
	}

	if r.CapsUpdate != nil {
		if caps := capsFromString(*r.CapsUpdate); caps != nil {
			pad.SetCaps(caps)
		}
	}
	if r.Buffer == nil {
		return
	}
	pad.Push(gstBufferFromDecoded(r.Buffer))
}

func (e *zenohDemuxElement) padFor(self *gst.Element, portName string, created bool) *gst.Pad {
	e.padsMu.Lock()
	defer e.padsMu.Unlock()

	if pad, ok := e.pads[portName]; ok {
		return pad
	}
	tmpl := self.GetPadTemplate("src_%s")
	pad := gst.NewPadFromTemplate(tmpl, fmt.Sprintf("src_%s", portName))
	pad.SetActive(true)
	self.AddPad(pad)
	e.pads[portName] = pad
	return pad
}

func (e *zenohDemuxElement) removeAllPads(self *gst.Element) {
	e.padsMu.Lock()
	defer e.padsMu.Unlock()
	for name, pad := range e.pads {
		pad.SetActive(false)
		self.RemovePad(pad)
		delete(e.pads, name)
	}
}
