package timeops

import (
	"context"

	"github.com/Aid-On/nagare"
)

// Zip2 pairs up items from sa and sb positionally: the Nth emitted pair is
// (sa's Nth item, sb's Nth item). It ends as soon as either source ends.
func Zip2[A, B any](sa nagare.Stream[A], sb nagare.Stream[B]) nagare.Stream[nagare.Pair[A, B]] {
	return &zipStream[A, B]{a: sa, b: sb}
}

type zipStream[A, B any] struct {
	a    nagare.Stream[A]
	b    nagare.Stream[B]
	done bool
}

func (z *zipStream[A, B]) Next(ctx context.Context) (nagare.Pair[A, B], error) {
	var zero nagare.Pair[A, B]
	if z.done {
		return zero, nagare.End
	}
	va, err := z.a.Next(ctx)
	if err != nil {
		z.done = true
		return zero, err
	}
	vb, err := z.b.Next(ctx)
	if err != nil {
		z.done = true
		return zero, err
	}
	return nagare.Pair[A, B]{First: va, Second: vb}, nil
}

func (z *zipStream[A, B]) Close() {
	z.a.Close()
	z.b.Close()
}
