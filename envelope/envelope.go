package envelope

import "fmt"

// Version is the envelope format tag. Receivers accept any Version whose
// Major matches what they understand and ignore unknown Minor upgrades.
type Version struct {
	Major int
	Minor int
}

// CurrentVersion is the format version this build writes.
var CurrentVersion = Version{Major: 1, Minor: 0}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Flag is one symbolic buffer flag from the fixed set the wire format
// recognizes.
type Flag uint8

const (
	FlagLive Flag = 1 << iota
	FlagDiscont
	FlagDelta
	FlagHeader
	FlagGap
	FlagDroppable
	FlagMarker
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagLive, "live"},
	{FlagDiscont, "discont"},
	{FlagDelta, "delta"},
	{FlagHeader, "header"},
	{FlagGap, "gap"},
	{FlagDroppable, "droppable"},
	{FlagMarker, "marker"},
}

// Flags is a set of Flag values.
type Flags uint8

// Has reports whether f includes flag.
func (f Flags) Has(flag Flag) bool { return Flags(flag)&f != 0 }

// Set returns f with flag added.
func (f Flags) Set(flag Flag) Flags { return f | Flags(flag) }

// String renders the comma-separated symbolic name list the wire format
// uses for gst.flags.
func (f Flags) String() string {
	out := ""
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			if out != "" {
				out += ","
			}
			out += fn.name
		}
	}
	return out
}

// ParseFlags parses a comma-separated symbolic flag list, ignoring unknown
// names (forward compatibility with future flag additions).
func ParseFlags(s string) Flags {
	var f Flags
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			name := s[start:i]
			start = i + 1
			if name == "" {
				continue
			}
			for _, fn := range flagNames {
				if fn.name == name {
					f = f.Set(fn.flag)
					break
				}
			}
		}
	}
	return f
}

// Compression is the symbolic compression tag the envelope carries.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
	CompressionGzip Compression = "gzip"
)

// Envelope is the strongly-typed wire record, per spec §4.2 and §9's
// "tagged record rather than a free-form map" redesign note.
type Envelope struct {
	// Legacy is true when the wire attachment carried no gst.version: the
	// receiver must treat the payload as payload-only, applying no fields.
	Legacy bool

	Version Version

	// Caps is the serialised negotiated media capabilities, nil if absent.
	Caps *string

	// PTS, DTS, Duration are nanosecond counts; nil if absent.
	PTS      *int64
	DTS      *int64
	Duration *int64

	// Offset, OffsetEnd are byte/sample counts; nil if absent.
	Offset    *uint64
	OffsetEnd *uint64

	Flags Flags

	// Compression is the gst.compression tag. New sets CompressionNone;
	// Decode leaves it empty when the key is absent.
	Compression Compression

	// SourceKeyExpr is set only for demultiplexer routing (zenoh.key-expr).
	SourceKeyExpr *string

	// UserMeta holds user.* passthrough keys plus, on decode, any key this
	// build does not recognize (preserved for forwarding, per §4.2).
	UserMeta map[string]string
}

// New returns an Envelope carrying CurrentVersion and no other fields set.
func New() Envelope {
	return Envelope{Version: CurrentVersion, Compression: CompressionNone}
}
