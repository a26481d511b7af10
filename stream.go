package nagare

import (
	"context"
	"errors"
)

// End is returned from Stream.Next when the stream is exhausted. Once Next
// has returned End, every subsequent call must also return End.
var End = errors.New("nagare: end of stream")

// Stream iterates lazily over a sequence of values whose production may
// block, fail, or be driven by a background producer. Streams are
// single-consumer and single-subscription: once handed to an operator or a
// finalizer, the caller must not iterate it directly.
type Stream[T any] interface {
	// Next advances the stream and returns the next item, or End once
	// exhausted. Implementations must keep returning End (or the same
	// terminal error) on every call after the first End/error.
	Next(ctx context.Context) (T, error)

	// Close releases any resources (timers, goroutines, notifiers) held by
	// this stream and its upstream chain. Safe to call more than once.
	Close()
}

// Pair is the output element type of Pairwise and Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}
