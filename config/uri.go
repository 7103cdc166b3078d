package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/e7canasta/gst-plugin-zenoh/envelope"
	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

const uriScheme = "zenoh"

// ParseURI parses the `zenoh:<resource-name>[?k=v(&k=v)*]` form spec §6
// names, returning the resource name and the decoded query parameters.
// Recognised keys mirror the element configuration surface; callers
// apply them onto whichever *Config type matches the element kind via
// ApplyURIParamsToPublisher or ApplyURIParamsToSubscriber.
func ParseURI(uri string) (keyExpr string, params url.Values, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", nil, fmt.Errorf("config: parse URI %q: %w", uri, err)
	}
	if u.Scheme != uriScheme {
		return "", nil, fmt.Errorf("config: URI %q: expected scheme %q, got %q", uri, uriScheme, u.Scheme)
	}

	// url.Parse puts everything after "zenoh:" and before "?" into
	// Opaque (no "//" authority in this scheme), not Path.
	keyExpr = u.Opaque
	if keyExpr == "" {
		keyExpr = strings.TrimPrefix(u.Path, "/")
	}
	if keyExpr == "" {
		return "", nil, fmt.Errorf("config: URI %q: empty resource name", uri)
	}

	return keyExpr, u.Query(), nil
}

// ApplyURIParamsToCommon applies the URI query keys that map onto
// Common fields, leaving kind-specific keys for the caller.
func ApplyURIParamsToCommon(c *Common, keyExpr string, params url.Values) error {
	c.KeyExpr = keyExpr
	if v := params.Get("config"); v != "" {
		c.ConfigPath = v
	}
	if v := params.Get("priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid priority %q: %w", v, err)
		}
		c.QoS.Priority = n
	}
	if v := params.Get("reliability"); v != "" {
		c.QoS.Reliability = transport.Reliability(v)
	}
	if v := params.Get("congestion-control"); v != "" {
		c.QoS.Congestion = transport.Congestion(v)
	}
	if v := params.Get("session-group"); v != "" {
		c.SessionGroup = v
	}
	return nil
}

// ApplyURIParamsToPublisher applies publisher-only URI query keys on top
// of ApplyURIParamsToCommon.
func ApplyURIParamsToPublisher(c *PublisherConfig, keyExpr string, params url.Values) error {
	if err := ApplyURIParamsToCommon(&c.Common, keyExpr, params); err != nil {
		return err
	}
	if v := params.Get("express"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid express %q: %w", v, err)
		}
		c.QoS.Express = b
	}
	if v := params.Get("send-caps"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid send-caps %q: %w", v, err)
		}
		c.SendCaps = b
	}
	if v := params.Get("caps-interval"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid caps-interval %q: %w", v, err)
		}
		c.CapsIntervalSeconds = n
	}
	if v := params.Get("send-buffer-meta"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid send-buffer-meta %q: %w", v, err)
		}
		c.SendBufferMeta = b
	}
	if v := params.Get("compression"); v != "" {
		c.Compression = envelope.Compression(v)
	}
	if v := params.Get("compression-level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid compression-level %q: %w", v, err)
		}
		c.CompressionLevel = n
	}
	return nil
}

// ApplyURIParamsToSubscriber applies subscriber-only URI query keys on
// top of ApplyURIParamsToCommon.
func ApplyURIParamsToSubscriber(c *SubscriberConfig, keyExpr string, params url.Values) error {
	if err := ApplyURIParamsToCommon(&c.Common, keyExpr, params); err != nil {
		return err
	}
	if v := params.Get("receive-timeout-ms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid receive-timeout-ms %q: %w", v, err)
		}
		c.ReceiveTimeoutMS = n
	}
	if v := params.Get("apply-buffer-meta"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid apply-buffer-meta %q: %w", v, err)
		}
		c.ApplyBufferMeta = b
	}
	return nil
}
