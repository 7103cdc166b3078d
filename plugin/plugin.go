// Package plugin adapts the host-framework-free zenohsink, zenohsrc,
// and zenohdemux elements to real GStreamer hooks. Every other package
// in this repository never imports gst: the render/create/route
// contracts take and return plain Go types and are unit-tested without
// a running pipeline. This package is the one place that boundary is
// crossed — buffer/caps conversion, GObject property wiring, and
// element registration, nothing else. Grounded on stream-capture's own
// use of github.com/tinyzimmer/go-gst (gst.Init, gst.NewElement,
// SetProperty, gst.Buffer.Map/Unmap), generalized from pipeline
// consumption to plugin authorship via gst/base.
package plugin

import (
	"github.com/tinyzimmer/go-gst/gst"
)

const (
	pluginName    = "zenoh"
	pluginVersion = "0.1.0"
	pluginLicense = "LGPL"
	pluginSource  = "gst-plugin-zenoh"
	pluginPackage = "gst-plugin-zenoh"
	pluginOrigin  = "https://github.com/e7canasta/gst-plugin-zenoh"
)

func init() {
	gst.RegisterPlugin(gst.PluginImpl{
		Name:        pluginName,
		Description: "Zenoh-style pub/sub transport bridge: publisher, subscriber, and demultiplexer elements",
		Version:     pluginVersion,
		License:     pluginLicense,
		Source:      pluginSource,
		Package:     pluginPackage,
		Origin:      pluginOrigin,
		Init:        registerElements,
	})
}

func registerElements(plugin *gst.Plugin) bool {
	if err := gst.RegisterElement(plugin, "zenohsink", gst.RankNone, extendsZenohSink); err != nil {
		return false
	}
	if err := gst.RegisterElement(plugin, "zenohsrc", gst.RankNone, extendsZenohSrc); err != nil {
		return false
	}
	if err := gst.RegisterElement(plugin, "zenohdemux", gst.RankNone, extendsZenohDemux); err != nil {
		return false
	}
	return true
}
