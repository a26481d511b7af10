package timeops

import (
	"context"
	"time"

	"github.com/Aid-On/nagare"
)

// Debounce emits the latest upstream item only once quiet has elapsed with
// no further item arriving. Every item superseded within the quiet window
// is discarded; only the most recent survives.
func Debounce[T any](ctx context.Context, s nagare.Stream[T], quiet time.Duration) nagare.Stream[T] {
	out, cctx := newChanOutStream[T](ctx, 0)
	go func() {
		defer close(out.out)
		defer s.Close()

		in := readAll(cctx, s)
		var timer *time.Timer
		var timerC <-chan time.Time
		var pending T
		have := false

		for {
			select {
			case <-cctx.Done():
				stopTimer(timer)
				return
			case it, ok := <-in:
				if !ok {
					stopTimer(timer)
					return
				}
				if it.err == nagare.End {
					if have {
						send(cctx, out.out, nagare.Result[T]{Value: pending})
					}
					return
				}
				if it.err != nil {
					stopTimer(timer)
					send(cctx, out.out, nagare.Result[T]{Err: it.err})
					return
				}
				pending = it.v
				have = true
				stopTimer(timer)
				timer = newTimer(quiet)
				timerC = timer.C
			case <-timerC:
				if have {
					if !send(cctx, out.out, nagare.Result[T]{Value: pending}) {
						return
					}
					have = false
				}
				timerC = nil
			}
		}
	}()
	return out
}
