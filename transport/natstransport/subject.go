package natstransport

import "strings"

// keyExprToSubject translates a Zenoh-style "/"-separated resource name,
// with "*" (one segment) and "**" (remaining segments) wildcards, into
// the NATS subject dialect: "." separators, "*" unchanged, "**" becomes
// the trailing ">" token.
func keyExprToSubject(keyExpr string) string {
	segments := strings.Split(keyExpr, "/")
	for i, seg := range segments {
		if seg == "**" {
			segments[i] = ">"
		}
	}
	return strings.Join(segments, ".")
}

// subjectToKeyExpr reverses keyExprToSubject for a concrete subject (one
// a message actually arrived on, so it carries no wildcards to translate
// back beyond the literal token substitution).
func subjectToKeyExpr(subject string) string {
	segments := strings.Split(subject, ".")
	for i, seg := range segments {
		if seg == ">" {
			segments[i] = "**"
		}
	}
	return strings.Join(segments, "/")
}
