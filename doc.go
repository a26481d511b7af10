// Package nagare implements a lazy, composable stream-processing engine.
//
// A Stream[T] is a pull-based, single-consumer sequence. Operators such as
// Map, Filter, Scan, Take and Skip are free functions that wrap an upstream
// Stream in a new one without doing any work; work happens only when a
// finalizer (ToArray, First, Reduce, ...) drives the chain to completion.
//
// When the chain's root is a dense slice and every operator in it is one the
// fusion compiler recognizes (Map/Filter/Scan/Take/Skip, all synchronous),
// ToArray runs the chain as a single array-kernel loop instead of calling
// through N layers of Stream.Next. The other finalizers always pull through
// Stream.Next. See fusion.go.
package nagare
