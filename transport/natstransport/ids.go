package natstransport

import "strconv"

func idFor(n uint64) string { return strconv.FormatUint(n, 10) }
