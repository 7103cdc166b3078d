// Package zenohdemux implements the demultiplexer element's core logic
// (spec §4.5): from one wildcard subscription, materialise one output
// port per distinct concrete resource name observed and route each
// sample to the right port. The routing decision is a pure function
// over an already-declared portRegistry; Element wires it to the
// session registry and the lifecycle state machine, same shape as
// zenohsink and zenohsrc. The host-framework adapter lives in the
// plugin package.
//
// Output ports are never removed before element teardown, and the
// element never calls the framework's pad-renegotiation-complete hook:
// the set of concrete resource names a wildcard subscription can
// observe is open-ended for the life of the element, so there is never
// a point at which "no more pads will be created" is true.
package zenohdemux
