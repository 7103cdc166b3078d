package zenohdemux

import (
	"encoding/hex"
	"strings"

	"github.com/e7canasta/gst-plugin-zenoh/config"
	"github.com/zeebo/blake3"
)

// fullPathName implements the "full-path" strategy (spec §4.5): every
// path separator becomes an underscore, every wildcard segment becomes
// the literal "wildcard".
func fullPathName(resourceName string) string {
	replaced := strings.ReplaceAll(resourceName, "*", "wildcard")
	return strings.ReplaceAll(replaced, "/", "_")
}

// lastSegmentName implements the "last-segment" strategy: the final
// path segment after the last separator, or the whole name if there is
// no separator.
func lastSegmentName(resourceName string) string {
	if i := strings.LastIndexByte(resourceName, '/'); i >= 0 {
		return resourceName[i+1:]
	}
	return resourceName
}

// hashName implements the "hash" strategy: an 8-hex-character prefix of
// the resource name's BLAKE3 digest, short, stable, and collision-
// unlikely for the resource-name cardinalities this plugin targets.
func hashName(resourceName string) string {
	h := blake3.New()
	h.Write([]byte(resourceName))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:8]
}

// padName computes the output port name for resourceName under the
// configured strategy.
func padName(strategy config.PadNaming, resourceName string) string {
	switch strategy {
	case config.PadNamingFullPath:
		return fullPathName(resourceName)
	case config.PadNamingHash:
		return hashName(resourceName)
	default:
		return lastSegmentName(resourceName)
	}
}
