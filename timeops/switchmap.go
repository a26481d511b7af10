package timeops

import (
	"context"

	"github.com/Aid-On/nagare"
)

// SwitchMap maps each item of s to an inner stream via fn; when a new
// outer item arrives, the previous inner stream is canceled and discarded
// in favor of the new one. It needs a background pump (unlike ConcatMap)
// because it must react to a new outer item arriving while an inner
// stream is still being drained.
//
// Once the outer stream ends, the inner stream that is still active runs to
// its own end before the returned Stream reports End, as RxJS's switchMap
// does. Close, or cancellation of ctx, still cancels that inner at once.
func SwitchMap[T, R any](ctx context.Context, s nagare.Stream[T], fn func(T) nagare.Stream[R]) nagare.Stream[R] {
	out, cctx := newChanOutStream[R](ctx, 0)
	go func() {
		defer close(out.out)
		defer s.Close()

		var innerCancel context.CancelFunc
		var innerDone chan struct{}
		stopInner := func() {
			if innerCancel != nil {
				innerCancel()
				<-innerDone
				innerCancel = nil
			}
		}
		defer stopInner()

		outerIn := readAll(cctx, s)
		for {
			select {
			case <-cctx.Done():
				return
			case it, ok := <-outerIn:
				if !ok || it.err == nagare.End {
					if innerDone != nil {
						select {
						case <-innerDone:
						case <-cctx.Done():
						}
					}
					return
				}
				if it.err != nil {
					stopInner()
					send(cctx, out.out, nagare.Result[R]{Err: it.err})
					return
				}
				stopInner()
				innerCtx, cancel := context.WithCancel(cctx)
				innerCancel = cancel
				done := make(chan struct{})
				innerDone = done
				inner := fn(it.v)
				go func() {
					defer close(done)
					defer inner.Close()
					for {
						rv, err := inner.Next(innerCtx)
						if err == nagare.End {
							return
						}
						if err != nil {
							if innerCtx.Err() == nil {
								send(cctx, out.out, nagare.Result[R]{Err: err})
							}
							return
						}
						if !send(cctx, out.out, nagare.Result[R]{Value: rv}) {
							return
						}
					}
				}()
			}
		}
	}()
	return out
}
