// Package semantics models a traced value type under two assignment disciplines.
//
// It is intentionally split into:
//   - CopyScope: assignment mutates the destination instance in place; every
//     initialized slot stays a valid instance until scope teardown, and a
//     moved-from instance holds the sentinel payload rather than vanishing.
//   - ReplaceScope: assignment destroys the destination's old instance and
//     relocates the source instance into it; a moved-from slot holds no
//     instance at all until rebound.
//
// Both scopes emit one trace event per lifecycle step through a trace.Sink,
// so the two disciplines can be told apart purely from the emitted sequence.
// Slot lifecycles are guarded by validated state transitions; an illegal call
// sequence (double destroy, use of an empty slot) is an error, never a panic.
package semantics
