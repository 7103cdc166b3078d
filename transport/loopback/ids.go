package loopback

import (
	"errors"
	"strconv"
)

var errClosed = errors.New("loopback: session is closed")

func idFor(n uint64) string { return strconv.FormatUint(n, 10) }
