package transport

import "errors"

var (
	errEmptyKeyExpr = errors.New("transport: key expression is empty")
	errEmptySegment = errors.New("transport: key expression has an empty segment")
)
