// Package lifecycle implements the five-state element state machine
// spec §4.1 and §9's "per-element state machine" redesign note describe:
// Null, Ready, Paused, Playing, plus transient Starting and Stopping
// phase labels; a busy flag held while a transition's action runs
// rejects reentrant transitions. Transitions are idempotent on a
// repeat request in the same state and rejected with errs.StateConflict
// on a conflicting concurrent request.
package lifecycle
