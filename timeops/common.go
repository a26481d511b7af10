// Package timeops implements Nagare's time-ordered and composite
// operators: Debounce, Throttle, Buffer, BufferTime, Merge, CombineLatest,
// Zip, ConcatMap, SwitchMap and Retry. None of these can be recognized by
// the root package's fusion compiler (they are not pure per-item
// transforms over a dense array). Debounce, Throttle, BufferTime, Merge,
// CombineLatest2 and SwitchMap each run as an independent background pump
// driving a channel-backed nagare.Stream, the same "one goroutine per live
// operator" shape the teacher's connection and retry code uses for
// anything that has to react to wall-clock time. Buffer, Zip2 and
// ConcatMap are plain synchronous pulls, and Retry retries a single call
// rather than wrapping a stream.
package timeops

import (
	"context"
	"time"

	"github.com/Aid-On/nagare"
)

// item is one pulled value (or the terminal error) from an upstream
// Stream, as delivered by readAll.
type item[T any] struct {
	v   T
	err error
}

// readAll spawns a single goroutine that drains s into ch, sending each
// item in order and finally the terminal error (End or a fault), then
// closing ch. It is the shared upstream-reading primitive of Debounce,
// Throttle, BufferTime, CombineLatest2 and SwitchMap.
func readAll[T any](ctx context.Context, s nagare.Stream[T]) <-chan item[T] {
	ch := make(chan item[T])
	go func() {
		defer close(ch)
		for {
			v, err := s.Next(ctx)
			select {
			case ch <- item[T]{v: v, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// chanOutStream adapts a channel of nagare.Result[T], populated by a
// background pump, into a nagare.Stream[T].
type chanOutStream[T any] struct {
	out    chan nagare.Result[T]
	cancel context.CancelFunc
	closed bool
}

func newChanOutStream[T any](ctx context.Context, buf int) (*chanOutStream[T], context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	return &chanOutStream[T]{out: make(chan nagare.Result[T], buf), cancel: cancel}, cctx
}

func (c *chanOutStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, nagare.NewError(nagare.CancelRequested, ctx.Err())
	case r, ok := <-c.out:
		if !ok {
			return zero, nagare.End
		}
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Value, nil
	}
}

func (c *chanOutStream[T]) Close() {
	if !c.closed {
		c.closed = true
		c.cancel()
	}
}

// send forwards r on out, returning false if ctx was canceled first.
func send[T any](ctx context.Context, out chan nagare.Result[T], r nagare.Result[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// newTimer is a thin wrapper over time.NewTimer; Debounce uses it to start
// a fresh quiet timer after every item.
func newTimer(d time.Duration) *time.Timer {
	t := time.NewTimer(d)
	return t
}

func stopTimer(t *time.Timer) {
	if t != nil && !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
