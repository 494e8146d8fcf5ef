// Package object provides the reference-counted object runtime every other
// ravecore type builds on.
//
// A concrete type becomes an object by embedding Header and publishing a
// Descriptor. The runtime then owns the lifecycle:
//
//	Create   -> refcount 1, constructor run
//	Retain   -> refcount +1
//	Release  -> refcount -1, destructor run exactly once at 0
//	Clone    -> fresh instance through the copy constructor
//
// # Failure tiers
//
// Construction and clone failures are ordinary errors. Reference-count
// underflow, use after destruction and double binding are broken invariants and
// panic with ErrRefCountUnderflow, ErrDestroyed or ErrAlreadyBound.
//
// # Concurrency
//
// Objects carry no locks. An object graph must have a single writer; sharing
// across goroutines requires external synchronisation around the whole graph.
// The diagnostics Tracker is the only process-wide state.
package object
