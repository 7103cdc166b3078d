package config

import (
	"fmt"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// PadNaming selects the demultiplexer's output-port naming strategy
// (spec §4.5).
type PadNaming string

const (
	PadNamingFullPath    PadNaming = "full-path"
	PadNamingLastSegment PadNaming = "last-segment"
	PadNamingHash        PadNaming = "hash"
)

// Common holds the configuration fields every element kind carries
// (spec §6's "Element configuration surface (all elements)"). These are
// the fields §4.1 locks against modification once the owning element
// reaches Ready or above — resolving them is what Null->Ready does.
type Common struct {
	KeyExpr      string
	ConfigPath   string
	QoS          transport.QoS
	SessionGroup string
}

// DefaultQoS matches the defaults a freshly-constructed element exposes
// before any property is set.
func DefaultQoS() transport.QoS {
	return transport.QoS{
		Priority:    4,
		Reliability: transport.ReliabilityReliable,
		Congestion:  transport.CongestionBlock,
		Express:     false,
	}
}

// PublisherConfig is the publisher element's full configuration surface
// (spec §6, publisher-only section plus Common).
type PublisherConfig struct {
	Common

	SendCaps            bool
	CapsIntervalSeconds int // 0 = on change only

	SendBufferMeta bool

	Compression      envelope.Compression
	CompressionLevel int // validated to 1-9; the codecs compress at their default level and do not read it
}

// DefaultPublisherConfig returns the publisher's out-of-the-box
// settings: buffer metadata and an initial caps send on, no
// compression.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Common:              Common{QoS: DefaultQoS()},
		SendCaps:            true,
		CapsIntervalSeconds: 0,
		SendBufferMeta:      true,
		Compression:         envelope.CompressionNone,
		CompressionLevel:    3,
	}
}

// SubscriberConfig is the subscriber element's full configuration
// surface (spec §6, subscriber-only section plus Common).
type SubscriberConfig struct {
	Common

	ReceiveTimeoutMS int // >= 10, default 1000 per spec §5
	ApplyBufferMeta  bool
}

func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		Common:           Common{QoS: DefaultQoS()},
		ReceiveTimeoutMS: 1000,
		ApplyBufferMeta:  true,
	}
}

// DemuxConfig is the demultiplexer element's full configuration surface
// (spec §6, demultiplexer-only section plus Common).
type DemuxConfig struct {
	Common

	PadNaming       PadNaming
	ApplyBufferMeta bool
}

func DefaultDemuxConfig() DemuxConfig {
	return DemuxConfig{
		Common:          Common{QoS: DefaultQoS()},
		PadNaming:       PadNamingLastSegment,
		ApplyBufferMeta: true,
	}
}

// ValidateCommon fail-fast checks the fields every element kind shares,
// per the same construction-time validation posture as
// stream-capture.NewRTSPStream.
func ValidateCommon(c Common) error {
	if err := transport.ValidateKeyExpr(c.KeyExpr); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.QoS.Priority < 1 || c.QoS.Priority > 7 {
		return fmt.Errorf("config: invalid priority %d (must be 1-7)", c.QoS.Priority)
	}
	switch c.QoS.Reliability {
	case transport.ReliabilityBestEffort, transport.ReliabilityReliable:
	default:
		return fmt.Errorf("config: invalid reliability %q", c.QoS.Reliability)
	}
	switch c.QoS.Congestion {
	case transport.CongestionBlock, transport.CongestionDrop:
	default:
		return fmt.Errorf("config: invalid congestion-control %q", c.QoS.Congestion)
	}
	return nil
}

// ValidatePublisher fail-fast validates a PublisherConfig.
func ValidatePublisher(c PublisherConfig) error {
	if err := ValidateCommon(c.Common); err != nil {
		return err
	}
	if err := validateCompression(c.Compression, c.CompressionLevel); err != nil {
		return err
	}
	if c.CapsIntervalSeconds < 0 {
		return fmt.Errorf("config: caps-interval must be >= 0, got %d", c.CapsIntervalSeconds)
	}
	return nil
}

// ValidateSubscriber fail-fast validates a SubscriberConfig.
func ValidateSubscriber(c SubscriberConfig) error {
	if err := ValidateCommon(c.Common); err != nil {
		return err
	}
	if c.ReceiveTimeoutMS < 10 {
		return fmt.Errorf("config: receive-timeout-ms must be >= 10, got %d", c.ReceiveTimeoutMS)
	}
	return nil
}

// ValidateDemux fail-fast validates a DemuxConfig.
func ValidateDemux(c DemuxConfig) error {
	if err := ValidateCommon(c.Common); err != nil {
		return err
	}
	switch c.PadNaming {
	case PadNamingFullPath, PadNamingLastSegment, PadNamingHash:
	default:
		return fmt.Errorf("config: invalid pad-naming %q", c.PadNaming)
	}
	return nil
}

func validateCompression(c envelope.Compression, level int) error {
	switch c {
	case envelope.CompressionNone, "":
		return nil
	case envelope.CompressionZstd, envelope.CompressionLZ4, envelope.CompressionGzip:
		if level < 1 || level > 9 {
			return fmt.Errorf("config: invalid compression-level %d (must be 1-9)", level)
		}
		return nil
	default:
		return fmt.Errorf("config: unrecognized compression %q", c)
	}
}
