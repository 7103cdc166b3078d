package plugin

import (
	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/transport/loopback"
	"github.com/e7canasta/gst-plugin-zenoh/transport/natstransport"
)

// selectOpener resolves a transport.Opener from the element's config
// path. The transport-config file (spec §6's `config-path`) may set a
// `transport: loopback` key to opt into the in-process bus the
// repository's own tests use; anything else, including no
// config file at all, opens a real natstransport.Session. This is the
// one place the plugin package chooses a concrete transport.Session
// implementation; every other package only knows the transport
// interface.
func selectOpener(cfg transport.Config) transport.Opener {
	if cfg.Raw != nil && cfg.Raw["transport"] == "loopback" {
		return loopback.Open
	}
	return natstransport.Open
}
