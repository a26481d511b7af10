package timeops

import (
	"context"
	"time"

	"github.com/Aid-On/nagare"
)

// Buffer collects items from s into fixed-size slices of n, emitting a
// partial final slice if s ends with a non-empty remainder.
func Buffer[T any](s nagare.Stream[T], n int) nagare.Stream[[]T] {
	return &bufferStream[T]{upstream: s, n: n}
}

type bufferStream[T any] struct {
	upstream nagare.Stream[T]
	n        int
	done     bool
}

func (b *bufferStream[T]) Next(ctx context.Context) ([]T, error) {
	if b.done {
		return nil, nagare.End
	}
	batch := make([]T, 0, b.n)
	for len(batch) < b.n {
		v, err := b.upstream.Next(ctx)
		if err == nagare.End {
			b.done = true
			if len(batch) == 0 {
				return nil, nagare.End
			}
			return batch, nil
		}
		if err != nil {
			b.done = true
			return nil, err
		}
		batch = append(batch, v)
	}
	return batch, nil
}

func (b *bufferStream[T]) Close() { b.upstream.Close() }

// BufferTime collects items from s for up to window, then emits them as one
// slice (which may be empty if nothing arrived during that window) and
// starts a fresh window. It ends once s ends, flushing any partial batch.
func BufferTime[T any](ctx context.Context, s nagare.Stream[T], window time.Duration) nagare.Stream[[]T] {
	out, cctx := newChanOutStream[[]T](ctx, 0)
	go func() {
		defer close(out.out)
		defer s.Close()

		in := readAll(cctx, s)
		timer := time.NewTimer(window)
		defer stopTimer(timer)
		var batch []T

		flush := func() bool {
			b := batch
			batch = nil
			return send(cctx, out.out, nagare.Result[[]T]{Value: b})
		}

		for {
			select {
			case <-cctx.Done():
				return
			case it, ok := <-in:
				if !ok {
					return
				}
				if it.err == nagare.End {
					if len(batch) > 0 {
						flush()
					}
					return
				}
				if it.err != nil {
					send(cctx, out.out, nagare.Result[[]T]{Err: it.err})
					return
				}
				batch = append(batch, it.v)
			case <-timer.C:
				if !flush() {
					return
				}
				timer.Reset(window)
			}
		}
	}()
	return out
}
