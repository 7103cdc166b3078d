package plugin

import (
	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// The GObject property surface represents every enum-valued config
// field as a plain string property (spec §6 names them as symbolic
// tags, not GEnum values), so each element's SetProperty/GetProperty
// round-trips through these small string<->domain-type converters
// rather than a generated GEnum type per field.

func reliabilityFromString(s string) transport.Reliability {
	switch s {
	case string(transport.ReliabilityBestEffort):
		return transport.ReliabilityBestEffort
	default:
		return transport.ReliabilityReliable
	}
}

func congestionFromString(s string) transport.Congestion {
	switch s {
	case string(transport.CongestionDrop):
		return transport.CongestionDrop
	default:
		return transport.CongestionBlock
	}
}

func compressionFromString(s string) envelope.Compression {
	switch s {
	case string(envelope.CompressionZstd), string(envelope.CompressionLZ4), string(envelope.CompressionGzip):
		return envelope.Compression(s)
	default:
		return envelope.CompressionNone
	}
}
