package timeops

import (
	"context"
	"time"

	"github.com/Aid-On/nagare"
)

// Throttle emits an item immediately, then ignores every subsequent item
// until period has elapsed (leading-edge throttling).
func Throttle[T any](ctx context.Context, s nagare.Stream[T], period time.Duration) nagare.Stream[T] {
	out, cctx := newChanOutStream[T](ctx, 0)
	go func() {
		defer close(out.out)
		defer s.Close()

		in := readAll(cctx, s)
		var cooldown <-chan time.Time

		for {
			select {
			case <-cctx.Done():
				return
			case it, ok := <-in:
				if !ok {
					return
				}
				if it.err == nagare.End {
					return
				}
				if it.err != nil {
					send(cctx, out.out, nagare.Result[T]{Err: it.err})
					return
				}
				if cooldown != nil {
					select {
					case <-cooldown:
						cooldown = nil
					default:
						continue // still cooling down: drop this item
					}
				}
				if !send(cctx, out.out, nagare.Result[T]{Value: it.v}) {
					return
				}
				t := time.NewTimer(period)
				cooldown = t.C
			}
		}
	}()
	return out
}
