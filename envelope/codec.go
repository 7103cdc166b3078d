package envelope

import (
	"strconv"
	"strings"
)

const (
	keyVersion    = "gst.version"
	keyCaps       = "gst.caps"
	keyPTS        = "gst.pts"
	keyDTS        = "gst.dts"
	keyDuration   = "gst.duration"
	keyOffset     = "gst.offset"
	keyOffsetEnd  = "gst.offset-end"
	keyFlags      = "gst.flags"
	keyCompress   = "gst.compression"
	keyZenohKeyex = "zenoh.key-expr"
	userPrefix    = "user."
)

// Encode renders e as the line-oriented "key=value" attachment string the
// transport carries alongside the payload. Encode never emits a line for a
// field that is absent (nil pointer, zero Flags, empty Compression).
func (e Envelope) Encode() string {
	var b strings.Builder

	writeLine(&b, keyVersion, e.Version.String())

	if e.Caps != nil {
		writeLine(&b, keyCaps, *e.Caps)
	}
	if e.PTS != nil {
		writeLine(&b, keyPTS, strconv.FormatInt(*e.PTS, 10))
	}
	if e.DTS != nil {
		writeLine(&b, keyDTS, strconv.FormatInt(*e.DTS, 10))
	}
	if e.Duration != nil {
		writeLine(&b, keyDuration, strconv.FormatInt(*e.Duration, 10))
	}
	if e.Offset != nil {
		writeLine(&b, keyOffset, strconv.FormatUint(*e.Offset, 10))
	}
	if e.OffsetEnd != nil {
		writeLine(&b, keyOffsetEnd, strconv.FormatUint(*e.OffsetEnd, 10))
	}
	if e.Flags != 0 {
		writeLine(&b, keyFlags, e.Flags.String())
	}
	if e.Compression != "" && e.Compression != CompressionNone {
		writeLine(&b, keyCompress, string(e.Compression))
	}
	if e.SourceKeyExpr != nil {
		writeLine(&b, keyZenohKeyex, *e.SourceKeyExpr)
	}

	for k, v := range e.UserMeta {
		if strings.HasPrefix(k, userPrefix) {
			writeLine(&b, k, v)
		}
	}

	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

// Decode parses the line-oriented attachment string into an Envelope.
// Missing fields are not errors; a missing gst.version decodes to a
// Legacy envelope with no other fields applied, per spec §3's invariant
// and §8 property 7.
//
// Unknown keys (neither a recognized gst.*/zenoh.* key nor a user.*
// passthrough key) are preserved in UserMeta under their literal key, so a
// forwarding element can round-trip them even without understanding them.
func Decode(attachment string) Envelope {
	e := Envelope{UserMeta: map[string]string{}}
	sawVersion := false

	for _, line := range strings.Split(attachment, "\n") {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case keyVersion:
			sawVersion = true
			e.Version = parseVersion(value)
		case keyCaps:
			v := value
			e.Caps = &v
		case keyPTS:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				e.PTS = &n
			}
		case keyDTS:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				e.DTS = &n
			}
		case keyDuration:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				e.Duration = &n
			}
		case keyOffset:
			if n, err := strconv.ParseUint(value, 10, 64); err == nil {
				e.Offset = &n
			}
		case keyOffsetEnd:
			if n, err := strconv.ParseUint(value, 10, 64); err == nil {
				e.OffsetEnd = &n
			}
		case keyFlags:
			e.Flags = ParseFlags(value)
		case keyCompress:
			e.Compression = Compression(value)
		case keyZenohKeyex:
			v := value
			e.SourceKeyExpr = &v
		default:
			e.UserMeta[key] = value
		}
	}

	if !sawVersion {
		return Envelope{Legacy: true, UserMeta: map[string]string{}}
	}

	return e
}

// parseVersion parses "major.minor"; malformed or missing components
// default to zero, never error — a malformed version string is treated as
// unrecognized rather than fatal to the receive path.
func parseVersion(s string) Version {
	major, minor := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		major, minor = s[:i], s[i+1:]
	}
	v := Version{}
	if n, err := strconv.Atoi(major); err == nil {
		v.Major = n
	}
	if n, err := strconv.Atoi(minor); err == nil {
		v.Minor = n
	}
	return v
}
