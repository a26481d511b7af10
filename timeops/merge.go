package timeops

import (
	"context"
	"sync"

	"github.com/Aid-On/nagare"
)

// Merge fans in every source stream, emitting items in the order they
// arrive across all of them, and ends once every source has ended. The
// first fault from any source ends the merged stream immediately.
func Merge[T any](ctx context.Context, sources ...nagare.Stream[T]) nagare.Stream[T] {
	out, cctx := newChanOutStream[T](ctx, 0)
	go func() {
		defer close(out.out)

		var wg sync.WaitGroup
		wg.Add(len(sources))
		for _, src := range sources {
			src := src
			go func() {
				defer wg.Done()
				defer src.Close()
				for {
					v, err := src.Next(cctx)
					if err == nagare.End {
						return
					}
					if err != nil {
						send(cctx, out.out, nagare.Result[T]{Err: err})
						return
					}
					if !send(cctx, out.out, nagare.Result[T]{Value: v}) {
						return
					}
				}
			}()
		}
		wg.Wait()
	}()
	return out
}
