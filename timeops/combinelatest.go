package timeops

import (
	"context"

	"github.com/Aid-On/nagare"
)

// CombineLatest2 emits Pair{a, b} every time either source produces a new
// item, once both sources have produced at least one. It ends once both
// sources have ended (an earlier-ending source simply stops contributing
// new values).
func CombineLatest2[A, B any](ctx context.Context, sa nagare.Stream[A], sb nagare.Stream[B]) nagare.Stream[nagare.Pair[A, B]] {
	out, cctx := newChanOutStream[nagare.Pair[A, B]](ctx, 0)
	go func() {
		defer close(out.out)
		defer sa.Close()
		defer sb.Close()

		ina := readAll(cctx, sa)
		inb := readAll(cctx, sb)
		var curA A
		var curB B
		haveA, haveB := false, false
		aDone, bDone := false, false

		emit := func() bool {
			if !haveA || !haveB {
				return true
			}
			return send(cctx, out.out, nagare.Result[nagare.Pair[A, B]]{Value: nagare.Pair[A, B]{First: curA, Second: curB}})
		}

		for !aDone || !bDone {
			select {
			case <-cctx.Done():
				return
			case it, ok := <-ina:
				if aDone {
					continue
				}
				if !ok || it.err == nagare.End {
					aDone = true
					ina = nil
					continue
				}
				if it.err != nil {
					send(cctx, out.out, nagare.Result[nagare.Pair[A, B]]{Err: it.err})
					return
				}
				curA, haveA = it.v, true
				if !emit() {
					return
				}
			case it, ok := <-inb:
				if bDone {
					continue
				}
				if !ok || it.err == nagare.End {
					bDone = true
					inb = nil
					continue
				}
				if it.err != nil {
					send(cctx, out.out, nagare.Result[nagare.Pair[A, B]]{Err: it.err})
					return
				}
				curB, haveB = it.v, true
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}
