// Package session implements the process-wide session registry spec
// §4.6 and §9's "process-wide shared registry" redesign note describe: a
// mutex-guarded table from session-group name to a refcounted transport
// session handle, so elements that share a non-empty session-group
// observe the same underlying transport.Session.
package session
